package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/masjidnetwork/backend/internal/config"
	"github.com/masjidnetwork/backend/internal/handler"
	"github.com/masjidnetwork/backend/internal/logging"
	"github.com/masjidnetwork/backend/internal/repository"
	"github.com/masjidnetwork/backend/internal/service"
	"github.com/masjidnetwork/backend/pkg/auth"
	"github.com/masjidnetwork/backend/pkg/gateway"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal(logger, "failed to connect to database", "error", err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	masjidRepo := repository.NewPgMasjidRepository(pool)
	campaignRepo := repository.NewPgCampaignRepository(pool)
	donationRepo := repository.NewPgDonationRepository(pool)
	detailRepo := repository.NewPgPaymentDetailRepository(pool)
	tx := repository.NewPgTransactor(pool)

	// REDIS_URL 未設定なら webhook の重複排除なしで動かす
	var events repository.WebhookEventStore
	if cfg.RedisURL != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logging.Fatal(logger, "failed to connect to redis", "error", err)
		}
		defer rdb.Close()
		events = repository.NewRedisWebhookEventStore(rdb, 24*time.Hour)
	} else {
		logger.Warn("REDIS_URL not set; webhook events are not deduplicated")
	}
	if cfg.StripeWebhookSecret == "" {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set; webhooks are acknowledged but ignored")
	}

	ledger := service.NewLedger(campaignRepo, logger)
	donationService := service.NewDonationService(donationRepo, campaignRepo, detailRepo, ledger, tx, logger)
	campaignService := service.NewCampaignService(campaignRepo, donationRepo, masjidRepo, logger)
	paymentService := service.NewPaymentService(
		gateway.NewSimulator(cfg.StripeWebhookSecret),
		donationService, campaignRepo, detailRepo, events, logger,
	)

	hs := handler.Handlers{
		Base:      handler.New(pool, logger),
		Campaigns: handler.NewCampaignHandler(campaignService, logger),
		Donations: handler.NewDonationHandler(donationService, logger),
		Payments:  handler.NewPaymentHandler(paymentService, logger),
	}
	router := handler.NewRouter(handler.RouterConfig{
		FrontendURL:   cfg.FrontendURL,
		SessionSecret: auth.SessionSecretBytes(cfg.SessionSecret),
		AuthRequired:  cfg.AuthRequired,
		RoleLookup:    handler.UserRoleLookup(userRepo),
	}, hs, handler.NewRateLimiter(ctx, cfg.RateLimitPerMinute, logger), logger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "auth_required", cfg.AuthRequired)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal(logger, "server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
