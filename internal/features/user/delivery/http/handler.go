package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/middleware"
	"nutristeck-bank-backend/internal/features/user/models"
	"nutristeck-bank-backend/internal/features/user/service"
)

type Handler struct {
	service service.UserService
}

func NewHandler(service service.UserService) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterPublicRoutes mounts the unauthenticated signup endpoints.
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/verify-otp", h.verifyOTP)
}

// RegisterRoutes mounts the authenticated user endpoints.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profile", h.profile)
}

// RegisterAdminRoutes mounts the account review endpoints. The group must
// already carry the admin role middleware.
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/users/pending", h.pending)
	router.POST("/users/:id/approve", h.approve)
}

func (h *Handler) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Check your email for the verification code.",
		"user":    user,
	})
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	if err := h.service.VerifyOTP(c.Request.Context(), req.Email, req.Code); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified. Your account is awaiting admin approval."})
}

func (h *Handler) profile(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) pending(c *gin.Context) {
	users, err := h.service.PendingApproval(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) approve(c *gin.Context) {
	user, err := h.service.Approve(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
