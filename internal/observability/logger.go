package observability

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/config"
)

// ServiceName is stamped on every log line.
const ServiceName = "paper-search-service"

// NewLogger builds the service logger from validated logging settings.
// An output other than "stderr" writes to stdout.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}
	return newLogger(cfg, out)
}

func newLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: zerolog.TimeFieldFormat}
	}

	lc := zerolog.New(out).
		Level(levelOrInfo(cfg.Level)).
		With().
		Timestamp().
		Str("service", ServiceName)
	if cfg.AddSource {
		lc = lc.Caller()
	}
	return lc.Logger()
}

// levelOrInfo parses a configured level, treating empty or unknown values as info.
func levelOrInfo(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// WithRequestContext adds the request correlation ID to a logger.
func WithRequestContext(logger zerolog.Logger, requestID string) zerolog.Logger {
	if requestID == "" {
		return logger
	}
	return logger.With().Str("request_id", requestID).Logger()
}

// WithSearchContext adds search-related fields to a logger.
func WithSearchContext(logger zerolog.Logger, query string, limit int) zerolog.Logger {
	return logger.With().
		Str("query", query).
		Int("limit", limit).
		Logger()
}

// WithSourceContext adds the paper source type and its display name to a logger.
func WithSourceContext(logger zerolog.Logger, source, provider string) zerolog.Logger {
	return logger.With().
		Str("source", source).
		Str("provider", provider).
		Logger()
}
