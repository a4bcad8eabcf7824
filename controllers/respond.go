package controllers

import (
	"backoffice/middleware"
	"backoffice/models"
	"backoffice/services"
	"backoffice/utils"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError переводит ошибку сервиса в HTTP-ответ.
// Неизвестные ошибки отдаются как 500 без подробностей, сама ошибка уходит в лог.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validationErr.Fields})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		utils.LogError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON разбирает тело запроса; при ошибке отвечает 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// pathID читает числовой :id; при ошибке отвечает 400
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// actorOf возвращает пользователя запроса, проверенного middleware.Auth
func actorOf(c *gin.Context) models.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}
