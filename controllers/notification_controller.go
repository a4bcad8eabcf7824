package controllers

import (
	"backoffice/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// NotificationController - напоминания о платежах, шаблоны и отправители
type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// Due - клиенты и полисы с платежом на сегодня
func (h *NotificationController) Due(c *gin.Context) {
	report, err := h.notifications.Due(c.Request.Context(), actorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *NotificationController) Send(c *gin.Context) {
	var req services.SendRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.notifications.Send(c.Request.Context(), actorOf(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *NotificationController) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.notifications.Logs(c.Request.Context(), actorOf(c), c.Query("kind"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *NotificationController) Templates(c *gin.Context) {
	templates, err := h.notifications.Templates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *NotificationController) CreateTemplate(c *gin.Context) {
	var req services.TemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	tpl, err := h.notifications.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *NotificationController) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.notifications.DeleteTemplate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationController) Senders(c *gin.Context) {
	senders, err := h.notifications.Senders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, senders)
}

func (h *NotificationController) CreateSender(c *gin.Context) {
	var req services.SenderRequest
	if !bindJSON(c, &req) {
		return
	}
	sender, err := h.notifications.CreateSender(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sender)
}

func (h *NotificationController) DeleteSender(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.notifications.DeleteSender(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
