package save

import (
	"io"
	"log/slog"
)

// extractConfig holds configuration for Extract.
type extractConfig struct {
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (cfg *extractConfig) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg.logger
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithLogger sets the logger for progress output. Nil disables logging.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = logger
	}
}
