package controllers

import (
	"backoffice/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LaundryController обрабатывает заказы прачечной
type LaundryController struct {
	laundry *services.LaundryService
}

func NewLaundryController(laundry *services.LaundryService) *LaundryController {
	return &LaundryController{laundry: laundry}
}

func (h *LaundryController) List(c *gin.Context) {
	orders, err := h.laundry.List(c.Request.Context(), actorOf(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *LaundryController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.laundry.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *LaundryController) Create(c *gin.Context) {
	var req services.LaundryOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.laundry.Create(c.Request.Context(), actorOf(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *LaundryController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.LaundryOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.laundry.Update(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *LaundryController) SetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.LaundryStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.laundry.SetStatus(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *LaundryController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.laundry.Delete(c.Request.Context(), actorOf(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LaundryController) Summary(c *gin.Context) {
	summary, err := h.laundry.Summary(c.Request.Context(), actorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
