package controllers

import (
	"backoffice/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PolicyController обрабатывает запросы по полисам LIC
type PolicyController struct {
	policies *services.PolicyService
	scan     *services.DueScanService
}

// NewPolicyController создает новый экземпляр PolicyController
func NewPolicyController(policies *services.PolicyService, scan *services.DueScanService) *PolicyController {
	return &PolicyController{policies: policies, scan: scan}
}

func (h *PolicyController) List(c *gin.Context) {
	policies, err := h.policies.List(c.Request.Context(), actorOf(c), c.Query("payment_status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policies)
}

func (h *PolicyController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	policy, err := h.policies.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (h *PolicyController) Create(c *gin.Context) {
	var req services.PolicyRequest
	if !bindJSON(c, &req) {
		return
	}
	policy, err := h.policies.Create(c.Request.Context(), actorOf(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, policy)
}

func (h *PolicyController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.PolicyRequest
	if !bindJSON(c, &req) {
		return
	}
	policy, err := h.policies.Update(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (h *PolicyController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.policies.Delete(c.Request.Context(), actorOf(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPaymentStatus переключает due/paid и сдвигает дату следующей премии
func (h *PolicyController) SetPaymentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.PaymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	policy, err := h.policies.SetPaymentStatus(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// Due - полисы, премия по которым должна быть оплачена сегодня или раньше
func (h *PolicyController) Due(c *gin.Context) {
	items, err := h.scan.Policies(c.Request.Context(), actorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
