package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

// loadDotEnv exports the variables of a local .env file, if any, without
// overriding what is already set in the environment.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}
}
