package controllers

import (
	"backoffice/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DepositController обрабатывает запросы по взносам
type DepositController struct {
	deposits  *services.DepositService
	imports   *services.ImportService
	maxUpload int64
}

// NewDepositController создает новый экземпляр DepositController
func NewDepositController(deposits *services.DepositService, imports *services.ImportService, maxUploadMB int) *DepositController {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &DepositController{deposits: deposits, imports: imports, maxUpload: int64(maxUploadMB) << 20}
}

func depositFilter(c *gin.Context) services.DepositFilter {
	return services.DepositFilter{
		CustomerCode: c.Query("customer_code"),
		From:         c.Query("from"),
		To:           c.Query("to"),
	}
}

func (h *DepositController) List(c *gin.Context) {
	deposits, err := h.deposits.List(c.Request.Context(), actorOf(c), depositFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposits)
}

func (h *DepositController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deposit, err := h.deposits.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposit)
}

func (h *DepositController) Create(c *gin.Context) {
	var req services.DepositRequest
	if !bindJSON(c, &req) {
		return
	}
	deposit, err := h.deposits.Create(c.Request.Context(), actorOf(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deposit)
}

func (h *DepositController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.DepositRequest
	if !bindJSON(c, &req) {
		return
	}
	deposit, err := h.deposits.Update(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposit)
}

func (h *DepositController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.deposits.Delete(c.Request.Context(), actorOf(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import загружает взносы из Excel
func (h *DepositController) Import(c *gin.Context) {
	file, err := openSheet(c, h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	result, err := h.imports.ImportDeposits(c.Request.Context(), actorOf(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
