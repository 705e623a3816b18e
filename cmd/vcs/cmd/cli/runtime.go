// Package cli carries the loaded configuration and logger to subcommands.
package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"video-search/internal/app/logging"
	"video-search/internal/config"
)

// Runtime is what every subcommand needs besides its own flags.
type Runtime struct {
	Config *config.Config
	Logger *zap.Logger
}

type runtimeKey struct{}

// Load reads .env, API keys and the settings file, and builds the logger.
func Load(settingsPath string, verbose bool) (*Runtime, error) {
	cfg, err := config.InitializeConfig(settingsPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Settings.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level, cfg.Settings.Development)
	if err != nil {
		return nil, err
	}
	if cfg.EnvFile != "" {
		logger.Debug("loaded environment", zap.String("file", cfg.EnvFile))
	}
	return &Runtime{Config: cfg, Logger: logger}, nil
}

func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runtimeKey{}, rt)
}

func FromContext(ctx context.Context) (*Runtime, error) {
	if ctx != nil {
		if rt, ok := ctx.Value(runtimeKey{}).(*Runtime); ok {
			return rt, nil
		}
	}
	return nil, fmt.Errorf("configuration not loaded")
}

// Settings is a shorthand for the loaded settings.
func (rt *Runtime) Settings() *config.Settings {
	return rt.Config.Settings
}
