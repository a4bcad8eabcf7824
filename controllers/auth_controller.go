package controllers

import (
	"backoffice/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthController обрабатывает вход и профиль
type AuthController struct {
	users *services.UserService
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Login обрабатывает вход пользователя
func (h *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout ничего не хранит на сервере: токен отбрасывает клиент
func (h *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me возвращает текущего пользователя
func (h *AuthController) Me(c *gin.Context) {
	me, err := h.users.Me(c.Request.Context(), actorOf(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}
