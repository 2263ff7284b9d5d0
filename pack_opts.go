package save

import (
	"io"
	"log/slog"
)

// packConfig holds configuration for Pack.
type packConfig struct {
	level  int
	logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (cfg *packConfig) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg.logger
}

// PackOption configures Pack.
type PackOption func(*packConfig)

// PackWithLevel sets the gzip compression level for the archive.
func PackWithLevel(level int) PackOption {
	return func(cfg *packConfig) {
		cfg.level = level
	}
}

// PackWithLogger sets the logger for progress output. Nil disables logging.
func PackWithLogger(logger *slog.Logger) PackOption {
	return func(cfg *packConfig) {
		cfg.logger = logger
	}
}
