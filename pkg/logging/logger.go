package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	// RunIDKey is the key used to store the replay run identifier in context
	RunIDKey contextKey = "run_id"
)

// Formats accepted by Config.Format
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config defines logging configuration
type Config struct {
	// Level is the logging level (trace, debug, info, warn, error)
	Level string
	// Pretty determines if logs should be formatted for human readability
	Pretty bool
	// Output is where logs are written (defaults to os.Stderr, stdout carries book dumps)
	Output io.Writer
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Pretty: false,
		Output: os.Stderr,
	}
}

// ParseFormat maps a format name to the Pretty flag
func ParseFormat(format string) (bool, error) {
	switch format {
	case FormatJSON, "":
		return false, nil
	case FormatConsole:
		return true, nil
	default:
		return false, fmt.Errorf("unknown log format %q", format)
	}
}

// Setup configures global logging based on the provided config and returns
// the resulting logger
func Setup(cfg Config) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return log.Logger
}

// WithRunID stores a run identifier in ctx together with a logger that
// carries it as a field
func WithRunID(ctx context.Context, runID string) context.Context {
	logger := FromContext(ctx).With().Str("run_id", runID).Logger()
	return logger.WithContext(context.WithValue(ctx, RunIDKey, runID))
}

// FromContext returns the logger carried by ctx, falling back to the global
// logger tagged with the run identifier when one is present
func FromContext(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}

	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return log.With().Str("run_id", runID).Logger()
	}

	return log.Logger
}
