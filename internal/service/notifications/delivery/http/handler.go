package http

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/logger"
	"nutristeck-bank-backend/internal/common/middleware"
	ledgermodels "nutristeck-bank-backend/internal/features/ledger/models"
	"nutristeck-bank-backend/internal/platform/telegram"
	"nutristeck-bank-backend/internal/service/notifications"
)

// BalanceSource answers the /balance bot command.
type BalanceSource interface {
	Dashboard(ctx context.Context, userID string) (*ledgermodels.DashboardResponse, error)
}

type Handler struct {
	service       *notifications.Service
	ledger        BalanceSource
	webhookSecret string
	internalToken string
}

func NewHandler(service *notifications.Service, ledger BalanceSource, webhookSecret, internalToken string) *Handler {
	return &Handler{
		service:       service,
		ledger:        ledger,
		webhookSecret: webhookSecret,
		internalToken: internalToken,
	}
}

// RegisterWebhook mounts the Telegram webhook endpoint on the root router.
func (h *Handler) RegisterWebhook(router *gin.Engine) {
	router.POST("/telegram/webhook/:secret", h.webhook)
}

// RegisterRoutes mounts the internal notify endpoint.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/notify", h.notify)
}

func (h *Handler) webhook(c *gin.Context) {
	if h.webhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.webhookSecret)) != 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		// Always 200 so Telegram does not retry malformed updates.
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if update.Message != nil {
		h.dispatch(c.Request.Context(), update.Message.Chat.ID, update.Message.Text)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) dispatch(ctx context.Context, chatID int64, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "/start":
		if len(fields) < 2 {
			h.service.NotifyChat(chatID, "👋 Welcome! Log in to the app and send /start with your link code.")
			return
		}
		if err := h.service.Bind(fields[1], chatID); err != nil {
			h.service.NotifyChat(chatID, "❌ Invalid or expired link code.")
			return
		}
		h.service.NotifyChat(chatID, "✅ *Linked!* You will now receive account alerts here. Send /balance anytime.")

	case "/balance":
		userID, ok := h.service.UserByChat(chatID)
		if !ok {
			h.service.NotifyChat(chatID, "🔗 This chat is not linked. Log in and send /start with your link code.")
			return
		}
		dashboard, err := h.ledger.Dashboard(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Balance lookup failed")
			h.service.NotifyChat(chatID, "⚠️ Could not fetch your balance right now.")
			return
		}
		h.service.NotifyChat(chatID, fmt.Sprintf(
			"💰 *Balance*\nAccount: %s\nAvailable: $%s",
			dashboard.AccountNumber, dashboard.Balance.StringFixed(2),
		))

	default:
		h.service.NotifyChat(chatID, "🤔 I didn't understand that. Available commands:\n/start <code> - link your account\n/balance - check your balance")
	}
}

type notifyRequest struct {
	LinkCode string `json:"link_code" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

// notify lets trusted internal callers push a message through the queue.
func (h *Handler) notify(c *gin.Context) {
	if h.internalToken == "" ||
		subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Internal-Token")), []byte(h.internalToken)) != 1 {
		middleware.AbortWithError(c, errors.New(errors.ErrCodeForbidden, "Forbidden"))
		return
	}

	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	h.service.Notify(req.LinkCode, req.Message)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
