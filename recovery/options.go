package recovery

import "log/slog"

// Default tuning values. The ratio threshold and the corrupted-structure
// detection are tuning choices carried over from the upstream pipeline, not
// structural requirements, so both are configurable.
const (
	// DefaultRatioThreshold is the minimum compression ratio worth keeping.
	// Below it the compressed bytes are discarded and the payload is
	// cleaned instead.
	DefaultRatioThreshold = 0.05

	// DefaultMaxOffsetRetries bounds the offset-skipped decode retries
	// attempted after a direct frame decode fails.
	DefaultMaxOffsetRetries = 20
)

// Options holds the read-only configuration fixed at engine construction.
type Options struct {
	// Format selects the encoding of successfully compressed output.
	Format OutputFormat

	// CompressionLevel selects the encoder's LZ4 compression level.
	// Zero means fast compression; values above 9 clamp to level 9.
	CompressionLevel int

	// RatioThreshold is the minimum (original-compressed)/original ratio
	// for compressed output to be kept.
	RatioThreshold float64

	// MaxOffsetRetries bounds the frame decode retry offsets.
	MaxOffsetRetries int

	// Logger receives per-invocation debug logging. Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// Option is a functional option for configuring Engine construction.
type Option func(*Options)

// WithOutputFormat sets the encoding used for compressed output.
// Invalid formats are ignored and the default (buffer) is kept.
func WithOutputFormat(format OutputFormat) Option {
	return func(o *Options) {
		if format.Valid() {
			o.Format = format
		}
	}
}

// WithCompressionLevel sets the encoder's LZ4 compression level.
func WithCompressionLevel(level int) Option {
	return func(o *Options) {
		o.CompressionLevel = level
	}
}

// WithRatioThreshold overrides the minimum compression ratio worth keeping.
func WithRatioThreshold(threshold float64) Option {
	return func(o *Options) {
		if threshold >= 0 && threshold < 1 {
			o.RatioThreshold = threshold
		}
	}
}

// WithMaxOffsetRetries overrides the decode retry offset bound.
func WithMaxOffsetRetries(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxOffsetRetries = n
		}
	}
}

// WithLogger sets the logger used for per-invocation debug logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func defaultOptions() Options {
	return Options{
		Format:           FormatBuffer,
		RatioThreshold:   DefaultRatioThreshold,
		MaxOffsetRetries: DefaultMaxOffsetRetries,
	}
}
