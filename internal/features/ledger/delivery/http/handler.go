package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/middleware"
	"nutristeck-bank-backend/internal/features/ledger/models"
	"nutristeck-bank-backend/internal/features/ledger/service"
	usermodels "nutristeck-bank-backend/internal/features/user/models"
)

// UserSource supplies the profile embedded in the dashboard payload.
type UserSource interface {
	GetUser(ctx context.Context, id string) (*usermodels.UserResponse, error)
}

type Handler struct {
	service service.LedgerService
	users   UserSource
}

func NewHandler(service service.LedgerService, users UserSource) *Handler {
	return &Handler{
		service: service,
		users:   users,
	}
}

// RegisterRoutes mounts the account endpoints. The group must already carry
// the auth middleware.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.dashboard)
	router.GET("/transactions", h.transactions)
	router.POST("/transfer", h.transfer)
	router.POST("/bill-pay", h.payBill)
}

func (h *Handler) dashboard(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	overview, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"balance":        overview.Balance,
		"account_number": overview.AccountNumber,
		"transactions":   overview.Transactions,
	})
}

func (h *Handler) transactions(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	account, err := h.service.AccountByUserID(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	history, err := h.service.History(c.Request.Context(), account.ID, limit)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

func (h *Handler) transfer(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	resp, err := h.service.Transfer(c.Request.Context(), userID, c.GetHeader("X-Link-Code"), &req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) payBill(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req models.BillPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	resp, err := h.service.PayBill(c.Request.Context(), userID, c.GetHeader("X-Link-Code"), &req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
