// Package app wires configuration into the store, gateways and services
// shared by the commands.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/config"
	"github.com/ArowuTest/homeradio-cashout/internal/models"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories"
	"github.com/ArowuTest/homeradio-cashout/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/homeradio-cashout/internal/repositories/mongodb"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/ArowuTest/homeradio-cashout/pkg/mongodb"
	"golang.org/x/exp/slog"
)

// SetupLogger installs the default slog logger
func SetupLogger(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// OpenStore connects the configured store driver. The returned func releases it.
func OpenStore(ctx context.Context, cfg *config.Config) (*repositories.Store, func(), error) {
	if cfg.Store.Driver == "memory" {
		slog.Warn("Using in-memory store; state is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	closeFn := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	slog.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)
	return mongorepo.NewStore(db), closeFn, nil
}

// InitialConfig converts the bootstrap section into the SystemConfig seed
func InitialConfig(cfg *config.Config) models.SystemConfig {
	b := cfg.Bootstrap
	return models.SystemConfig{
		PayoutPercentage:  b.PayoutPercentage,
		FixedPayoutAmount: b.FixedPayoutAmount,
		MinStake:          b.MinStake,
		MaxStake:          b.MaxStake,
		DrawIntervalHours: b.DrawIntervalHours,
		CurrentJackpot:    b.CurrentJackpot,
	}
}

// Menu builds the subscriber texts from the USSD section
func Menu(cfg *config.Config) services.Menu {
	return services.Menu{
		ServiceName: cfg.USSD.ServiceName,
		Currency:    cfg.USSD.Currency,
		Stake:       cfg.USSD.StakeAmount,
	}
}
