package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/middleware"
	"nutristeck-bank-backend/internal/features/auth/models"
	"nutristeck-bank-backend/internal/features/auth/service"
)

type Handler struct {
	service service.AuthService
}

func NewHandler(service service.AuthService) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes mounts the unauthenticated session endpoints.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.login)
	router.POST("/refresh", h.refresh)
	router.POST("/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// logout is stateless: tokens expire on their own, the client just drops them.
func (h *Handler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
