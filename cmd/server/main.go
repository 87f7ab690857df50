package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"nutristeck-bank-backend/internal/common/logger"
	"nutristeck-bank-backend/internal/common/middleware"
	"nutristeck-bank-backend/internal/config"
	authhttp "nutristeck-bank-backend/internal/features/auth/delivery/http"
	authservice "nutristeck-bank-backend/internal/features/auth/service"
	deposithttp "nutristeck-bank-backend/internal/features/deposit/delivery/http"
	depositredis "nutristeck-bank-backend/internal/features/deposit/repository/redis"
	depositservice "nutristeck-bank-backend/internal/features/deposit/service"
	ledgerhttp "nutristeck-bank-backend/internal/features/ledger/delivery/http"
	ledgerredis "nutristeck-bank-backend/internal/features/ledger/repository/redis"
	ledgerservice "nutristeck-bank-backend/internal/features/ledger/service"
	userhttp "nutristeck-bank-backend/internal/features/user/delivery/http"
	usermodels "nutristeck-bank-backend/internal/features/user/models"
	userredis "nutristeck-bank-backend/internal/features/user/repository/redis"
	userservice "nutristeck-bank-backend/internal/features/user/service"
	"nutristeck-bank-backend/internal/platform/redis"
	"nutristeck-bank-backend/internal/platform/telegram"
	"nutristeck-bank-backend/internal/service/mailer"
	"nutristeck-bank-backend/internal/service/notifications"
	notificationshttp "nutristeck-bank-backend/internal/service/notifications/delivery/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("config load: %v", err))
	}

	logger.Init("nutristeck-bank", cfg.Debug)

	rdb, err := redis.Open(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer rdb.Close()

	var mail mailer.Sender
	if cfg.SMTP.Username != "" {
		mail = mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Warn().Msg("SMTP not configured, logging emails instead")
		mail = mailer.LogSender{}
	}

	userRepo := userredis.NewUserRepository(rdb)
	accountRepo := ledgerredis.NewAccountRepository(rdb)
	depositRepo := depositredis.NewDepositRepository(rdb)
	walletRepo := depositredis.NewWalletRepository(rdb)

	tgClient := telegram.NewClient(cfg.Telegram.BotToken)
	notifier := notifications.NewService(tgClient, cfg.Telegram.QueueSize)
	go notifier.Start(ctx)

	ledgerSvc := ledgerservice.NewLedgerService(accountRepo, notifier)
	userSvc := userservice.NewUserService(userRepo, mail, ledgerSvc)
	tokens := authservice.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authSvc := authservice.NewAuthService(userSvc, tokens, notifier)
	depositSvc := depositservice.NewDepositService(depositRepo, walletRepo, ledgerSvc, notifier)

	if err := userSvc.EnsureDefaultAdmin(ctx, cfg.Admin.Name, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.PIN); err != nil {
		logger.Fatal().Err(err).Msg("Default admin seed failed")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.Origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Link-Code"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	userHandler := userhttp.NewHandler(userSvc)
	authHandler := authhttp.NewHandler(authSvc)
	ledgerHandler := ledgerhttp.NewHandler(ledgerSvc, userSvc)
	depositHandler := deposithttp.NewHandler(depositSvc)
	notifyHandler := notificationshttp.NewHandler(notifier, ledgerSvc, cfg.Telegram.WebhookSecret, cfg.Telegram.InternalToken)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	notifyHandler.RegisterWebhook(router)

	api := router.Group("/api")
	userHandler.RegisterPublicRoutes(api.Group("/auth"))
	authHandler.RegisterRoutes(api.Group("/auth"))
	notifyHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(tokens))
	userHandler.RegisterRoutes(protected.Group("/auth"))
	ledgerHandler.RegisterRoutes(protected)
	depositHandler.RegisterRoutes(protected)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(usermodels.RoleAdmin))
	userHandler.RegisterAdminRoutes(admin)
	depositHandler.RegisterAdminRoutes(admin)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}
