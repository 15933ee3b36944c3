package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/erain9/chunkbook/config"
	"github.com/erain9/chunkbook/pkg/backend/chunked"
	"github.com/erain9/chunkbook/pkg/core"
	"github.com/erain9/chunkbook/pkg/events"
	"github.com/erain9/chunkbook/pkg/logging"
	"github.com/erain9/chunkbook/pkg/otel"
	"github.com/erain9/chunkbook/pkg/render"
	"github.com/erain9/chunkbook/pkg/replay"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Load configuration
	cfg, err := config.Load(args)
	if err != nil {
		if config.IsHelp(err) {
			fmt.Fprint(stderr, config.Usage())
			return 0
		}
		fmt.Fprintf(stderr, "chunkbook: %v\n%s", err, config.Usage())
		return 2
	}

	// Setup logging
	pretty, _ := logging.ParseFormat(cfg.Log.Format)
	logger := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: pretty,
		Output: stderr,
	})
	runID := uuid.NewString()
	ctx = logging.WithRunID(logger.WithContext(ctx), runID)
	logger = logging.FromContext(ctx)

	// Initialize OpenTelemetry
	shutdown, err := otel.Setup(ctx, otel.Config{
		Metrics: cfg.Telemetry.Metrics,
		Tracing: cfg.Telemetry.Tracing,
		Output:  stderr,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize OpenTelemetry")
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("OpenTelemetry shutdown error")
		}
	}()

	if cfg.Telemetry.Metrics {
		if err := otel.StartRuntimeMetrics(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start runtime metrics")
		}
	}

	input := stdin
	if cfg.Input.Path != "" {
		f, err := os.Open(cfg.Input.Path)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to open input")
			return 1
		}
		defer f.Close()
		input = f
	}

	book := core.NewOrderBook(
		chunked.NewSide(core.Buy, chunked.WithMaxChunkSize(cfg.Book.MaxChunkSize)),
		chunked.NewSide(core.Sell, chunked.WithMaxChunkSize(cfg.Book.MaxChunkSize)),
	)
	if reg, err := otel.GetBookMetrics().ObserveDepth(book); err != nil {
		logger.Warn().Err(err).Msg("Failed to register depth gauges")
	} else if reg != nil {
		defer reg.Unregister()
	}

	printer := render.New(stdout,
		render.WithSilent(cfg.Input.Silent),
		render.WithColor(cfg.Input.Color),
	)

	engine := replay.New(book, printer,
		replay.WithLogger(logger),
		replay.WithVerify(cfg.Input.Verify),
		replay.WithSpanAttributes(
			attribute.String(otel.AttributeRunID, runID),
			attribute.String(otel.AttributeInputPath, inputName(cfg)),
			attribute.Int(otel.AttributeMaxChunkSize, cfg.Book.MaxChunkSize),
		),
	)

	_, runErr := engine.Run(ctx, events.NewReader(input))
	if err := printer.Flush(); err != nil {
		logger.Error().Err(err).Msg("Failed to write output")
		return 1
	}
	if runErr != nil {
		zerolog.Ctx(ctx).Error().Err(runErr).Msg("Replay failed")
		return 1
	}

	logger.Debug().Str("book", book.String()).Msg("Final book")
	return 0
}

func inputName(cfg *config.Config) string {
	if cfg.Input.Path == "" {
		return "-"
	}
	return cfg.Input.Path
}
