package controllers

import (
	"backoffice/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserController управляет учетными записями (только администратор)
type UserController struct {
	users *services.UserService
}

// NewUserController создает новый экземпляр UserController
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (h *UserController) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserController) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), actorOf(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
