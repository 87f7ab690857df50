package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutristeck-bank-backend/internal/common/errors"
	"nutristeck-bank-backend/internal/common/middleware"
	"nutristeck-bank-backend/internal/features/deposit/models"
	"nutristeck-bank-backend/internal/features/deposit/service"
)

type Handler struct {
	service service.DepositService
}

func NewHandler(service service.DepositService) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes mounts the user-facing deposit endpoints.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/deposits/check", h.submit(models.MethodMobileCheck))
	router.POST("/deposits/crypto", h.submit(models.MethodCrypto))
	router.GET("/deposits", h.listMine)
	router.POST("/crypto/wallet", h.activeWallet)
}

// RegisterAdminRoutes mounts the review and wallet management endpoints.
// The group must already carry the admin role middleware.
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/deposits", h.listAll)
	router.GET("/deposits/pending", h.listPending)
	router.POST("/deposits/decide", h.decide)
	router.GET("/wallets", h.listWallets)
	router.POST("/wallets", h.saveWallet)
	router.DELETE("/wallets/:crypto/:network", h.deleteWallet)
}

func (h *Handler) submit(method models.DepositMethod) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.ContextUserID)
		username := c.GetString(middleware.ContextUsername)

		var req models.SubmitDepositRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
			return
		}
		req.Method = method

		deposit, err := h.service.Submit(c.Request.Context(), userID, username, c.GetHeader("X-Link-Code"), &req)
		if err != nil {
			middleware.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"deposit_id": deposit.ID, "status": deposit.Status})
	}
}

func (h *Handler) listMine(c *gin.Context) {
	deposits, err := h.service.ListByUser(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposits)
}

func (h *Handler) activeWallet(c *gin.Context) {
	var req models.WalletLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	wallet, err := h.service.ActiveWallet(c.Request.Context(), req.Crypto, req.Network)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"crypto":  wallet.Crypto,
		"network": wallet.Network,
		"address": wallet.Address,
		"label":   wallet.Label,
	})
}

func (h *Handler) listAll(c *gin.Context) {
	deposits, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposits)
}

func (h *Handler) listPending(c *gin.Context) {
	deposits, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposits)
}

func (h *Handler) decide(c *gin.Context) {
	var req models.DecideDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	deposit, err := h.service.Decide(c.Request.Context(), req.DepositID, c.GetString(middleware.ContextUserID), req.Approve, req.Reason)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, deposit)
}

func (h *Handler) listWallets(c *gin.Context) {
	wallets, err := h.service.ListWallets(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallets)
}

func (h *Handler) saveWallet(c *gin.Context) {
	var req models.SaveWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, errors.Wrap(err, errors.ErrCodeValidation, "Invalid request body"))
		return
	}

	wallet, err := h.service.SaveWallet(c.Request.Context(), &req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (h *Handler) deleteWallet(c *gin.Context) {
	if err := h.service.DeleteWallet(c.Request.Context(), c.Param("crypto"), c.Param("network")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
