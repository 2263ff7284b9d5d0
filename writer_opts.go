package save

// writerConfig holds configuration for a Writer.
type writerConfig struct {
	level int
}

// WriterOption configures a Writer.
type WriterOption func(*writerConfig)

// WriterLevel sets the gzip compression level.
// It accepts the levels defined by the compress/gzip API.
func WriterLevel(level int) WriterOption {
	return func(cfg *writerConfig) {
		cfg.level = level
	}
}
