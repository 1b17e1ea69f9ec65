package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ArowuTest/homeradio-cashout/internal/app"
	"github.com/ArowuTest/homeradio-cashout/internal/config"
	"github.com/ArowuTest/homeradio-cashout/internal/services"
	"github.com/ArowuTest/homeradio-cashout/internal/utils"
	"github.com/ArowuTest/homeradio-cashout/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

func main() {
	hashKey := flag.String("hash-key", "", "print the bcrypt hash of an operator API key and exit")
	tokenFor := flag.String("token", "", "print an operator token for this name after seeding")
	blacklistFile := flag.String("blacklist", "", "CSV of MSISDNs to blacklist")
	flag.Parse()

	if *hashKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*hashKey), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to hash key:", err)
			os.Exit(1)
		}
		fmt.Println(string(hash))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	app.SetupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, *blacklistFile, *tokenFor); err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, blacklistFile, tokenFor string) error {
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	audit := services.NewAuditService(store.AuditLogs)
	sysCfg, err := services.NewConfigService(store.Config, audit).Bootstrap(ctx, app.InitialConfig(cfg))
	if err != nil {
		return err
	}
	slog.Info("System config ready", "jackpot", sysCfg.CurrentJackpot, "nextDrawTime", sysCfg.NextDrawTime)

	if blacklistFile != "" {
		if err := importBlacklist(ctx, services.NewBlacklistService(store.Blacklist, audit), blacklistFile); err != nil {
			return err
		}
	}

	if tokenFor != "" {
		if cfg.JWT.Secret == "" {
			return fmt.Errorf("JWT.Secret is not configured")
		}
		tokens := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
		token, expiresAt, err := tokens.Issue(tokenFor, services.OperatorRole)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n(expires %s)\n", token, expiresAt.Format(time.RFC3339))
	}
	return nil
}

func importBlacklist(ctx context.Context, blacklist services.BlacklistService, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	res, err := utils.ReadBlacklistCSV(file, "seed")
	if err != nil {
		return err
	}
	added := 0
	for _, entry := range res.Entries {
		if err := blacklist.Add(ctx, entry); err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		added++
	}
	for _, e := range res.Errors {
		slog.Warn("Blacklist import problem", "detail", e)
	}
	slog.Info("Blacklist import finished", "rows", res.TotalRows, "added", added, "problems", len(res.Errors))
	return nil
}
