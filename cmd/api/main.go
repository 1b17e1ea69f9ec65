package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/homeradio-cashout/api/routes"
	"github.com/ArowuTest/homeradio-cashout/internal/app"
	"github.com/ArowuTest/homeradio-cashout/internal/config"
	"github.com/ArowuTest/homeradio-cashout/internal/handlers"
	"github.com/ArowuTest/homeradio-cashout/internal/scheduler"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/ArowuTest/homeradio-cashout/pkg/advisor"
	"github.com/ArowuTest/homeradio-cashout/pkg/jwt"
	"github.com/ArowuTest/homeradio-cashout/pkg/momo"
	"github.com/ArowuTest/homeradio-cashout/pkg/smsgateway"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	app.SetupLogger(cfg)
	if cfg.JWT.Secret == "" {
		slog.Error("JWT.Secret is not configured")
		os.Exit(1)
	}
	gin.SetMode(gin.ReleaseMode)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := app.OpenStore(startCtx, cfg)
	if err != nil {
		cancelStart()
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	audit := services.NewAuditService(store.AuditLogs)
	configService := services.NewConfigService(store.Config, audit)
	if _, err := configService.Bootstrap(startCtx, app.InitialConfig(cfg)); err != nil {
		cancelStart()
		slog.Error("Failed to bootstrap system config", "error", err)
		os.Exit(1)
	}

	adv, closeAdvisor := newAdvisor(startCtx, cfg)
	defer closeAdvisor()
	cancelStart()

	menu := app.Menu(cfg)
	gateway := momo.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.APISecret, cfg.Payment.MockAPI,
		momo.WithMockBehaviour(cfg.Payment.MockSuccessRate, cfg.Payment.MockLatency))
	tokens := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)

	sessionService := services.NewSessionService(store, gateway, audit, services.SessionSettings{
		Menu:              menu,
		SessionTTL:        cfg.USSD.SessionTTL,
		CollectionTimeout: cfg.Payment.CollectionTimeout,
	})
	drawService := services.NewDrawService(store, gateway, adv, newNotifier(cfg, menu), audit, nil, services.DrawSettings{
		WinProbability:      cfg.Draw.WinProbability,
		JackpotFloor:        cfg.Draw.JackpotFloor,
		Concurrency:         cfg.Draw.Concurrency,
		LockTTL:             cfg.Draw.LockTTL,
		SettleTimeout:       cfg.Draw.SettleTimeout,
		DisbursementTimeout: cfg.Payment.DisbursementTimeout,
		AdvisorTimeout:      cfg.Advisor.Timeout,
		FallbackScript:      cfg.Advisor.FallbackAnnouncement,
		Menu:                menu,
	})

	router := routes.SetupRouter(cfg, routes.Handlers{
		USSD: handlers.NewUSSDHandler(sessionService, handlers.FieldAliases{
			SessionID: cfg.USSD.SessionIDAliases,
			Phone:     cfg.USSD.PhoneAliases,
			UserID:    cfg.USSD.UserIDAliases,
			Text:      cfg.USSD.TextAliases,
		}),
		Auth:      handlers.NewAuthHandler(services.NewAuthService(cfg.Auth.Operators, tokens)),
		Draw:      handlers.NewDrawHandler(drawService),
		Config:    handlers.NewConfigHandler(configService),
		Audit:     handlers.NewAuditHandler(audit),
		Blacklist: handlers.NewBlacklistHandler(services.NewBlacklistService(store.Blacklist, audit)),
	}, tokens)

	var drawScheduler *scheduler.DrawScheduler
	if cfg.Draw.SchedulerOn {
		drawScheduler = scheduler.New(drawService, cfg.Draw.PollInterval, cfg.Draw.PollInterval)
		drawScheduler.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	slog.Info("Server starting", "port", cfg.Server.Port, "store", cfg.Store.Driver, "mockPayments", cfg.Payment.MockAPI)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if drawScheduler != nil {
		drawScheduler.Stop()
	}

	slog.Info("Server exiting")
}

// newAdvisor uses Gemini when a key is configured, otherwise the static advisor
func newAdvisor(ctx context.Context, cfg *config.Config) (advisor.Advisor, func()) {
	static := advisor.Static{StationName: cfg.Advisor.StationName, Shortcode: cfg.USSD.Shortcode}
	if cfg.Advisor.GeminiAPIKey == "" {
		slog.Warn("Gemini API key is missing; using static announcements and no fraud screening")
		return static, func() {}
	}

	gemini, err := advisor.NewGemini(ctx, cfg.Advisor.GeminiAPIKey, cfg.Advisor.Model, cfg.Advisor.StationName, cfg.USSD.Shortcode)
	if err != nil {
		slog.Error("Failed to create Gemini client; using static advisor", "error", err)
		return static, func() {}
	}
	return gemini, func() {
		if err := gemini.Close(); err != nil {
			slog.Warn("Error closing Gemini client", "error", err)
		}
	}
}

func newNotifier(cfg *config.Config, menu services.Menu) *services.WinnerNotifier {
	if !cfg.SMS.Enabled {
		return nil
	}
	var gateway smsgateway.Gateway
	if cfg.SMS.MockSMS || cfg.SMS.BaseURL == "" {
		gateway = smsgateway.NewMockGateway("SMS")
	} else {
		gateway = smsgateway.NewHTTPGateway(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.SenderID)
	}
	return services.NewWinnerNotifier(gateway, menu)
}
