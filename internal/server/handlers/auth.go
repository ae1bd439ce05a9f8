package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shwepos/internal/auth"
	"shwepos/internal/server/middleware"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	owner, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, errorResponse("username already taken"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("failed to register owner"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("owner registered", owner))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorResponse("invalid username or password"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("failed to log in"))
		return
	}

	c.JSON(http.StatusOK, successResponse("logged in", session))
}

func (h *AuthHandler) Me(c *gin.Context) {
	owner, err := h.service.GetOwner(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		if errors.Is(err, auth.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("owner not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("failed to load owner"))
		return
	}
	c.JSON(http.StatusOK, successResponse("owner profile", owner))
}
