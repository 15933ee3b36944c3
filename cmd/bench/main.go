package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/erain9/chunkbook/pkg/backend/chunked"
	"github.com/erain9/chunkbook/pkg/core"
	"github.com/erain9/chunkbook/pkg/events"
	"github.com/erain9/chunkbook/pkg/logging"
	"github.com/erain9/chunkbook/pkg/render"
	"github.com/erain9/chunkbook/pkg/replay"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Latencies above this are clamped into the top bucket
const maxTrackedLatency = int64(10 * time.Second)

type options struct {
	input        string
	runs         int
	maxChunkSize int
	rate         float64
	color        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.input, "i", "", "Event file to replay (required)")
	fs.IntVar(&opts.runs, "runs", 5, "Number of replays against a fresh book")
	fs.IntVar(&opts.maxChunkSize, "max-chunk-size", chunked.DefaultMaxChunkSize, "Maximum number of orders per chunk")
	fs.Float64Var(&opts.rate, "rate", 0, "Throttle to this many events per second (0 disables)")
	fs.BoolVar(&opts.color, "color", false, "Colour the report headers")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg := logging.DefaultConfig()
	cfg.Output = stderr
	cfg.Pretty = true
	logger := logging.Setup(cfg)

	if opts.input == "" || opts.runs < 1 || opts.maxChunkSize < 1 || opts.maxChunkSize > chunked.MaxChunkSizeLimit || opts.rate < 0 {
		logger.Error().Msg("Need -i, a positive -runs, a -max-chunk-size within limits and a non-negative -rate")
		return 2
	}

	f, err := os.Open(opts.input)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open input")
		return 1
	}
	evs, err := events.ReadAll(f)
	f.Close()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read events")
		return 1
	}

	hist, elapsed, err := bench(ctx, evs, opts)
	if err != nil {
		logger.Error().Err(err).Msg("Benchmark aborted")
		return 1
	}

	report(stdout, hist, elapsed, len(evs), opts)
	return 0
}

// bench replays evs opts.runs times and records the latency of every event
func bench(ctx context.Context, evs []events.Event, opts options) (*hdrhistogram.Histogram, time.Duration, error) {
	hist := hdrhistogram.New(1, maxTrackedLatency, 3)

	var limiter *rate.Limiter
	if opts.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.rate), 1)
	}

	var elapsed time.Duration
	for range opts.runs {
		book := core.NewOrderBook(
			chunked.NewSide(core.Buy, chunked.WithMaxChunkSize(opts.maxChunkSize)),
			chunked.NewSide(core.Sell, chunked.WithMaxChunkSize(opts.maxChunkSize)),
		)
		book.SetMetrics(nil)
		engine := replay.New(book, render.Discard{},
			replay.WithLogger(zerolog.Nop()),
			replay.WithMetrics(nil),
		)

		for _, ev := range evs {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return nil, 0, err
				}
			} else if err := ctx.Err(); err != nil {
				return nil, 0, err
			}

			start := time.Now()
			if err := engine.Apply(ctx, ev); err != nil {
				return nil, 0, err
			}
			d := time.Since(start)
			elapsed += d
			hist.RecordValue(min(max(d.Nanoseconds(), 1), maxTrackedLatency))
		}
	}

	return hist, elapsed, nil
}

func report(w io.Writer, hist *hdrhistogram.Histogram, elapsed time.Duration, count int, opts options) {
	header := color.New(color.FgCyan)
	if opts.color {
		header.EnableColor()
	} else {
		header.DisableColor()
	}

	header.Fprintf(w, "%d events x %d runs, max chunk size %d\n", count, opts.runs, opts.maxChunkSize)
	fmt.Fprintf(w, "%-8s %12s\n", "total", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(w, "%-8s %12.0f\n", "ev/s", float64(hist.TotalCount())/elapsed.Seconds())
	}

	header.Fprintln(w, "latency")
	for _, q := range []float64{50, 90, 99, 99.9} {
		fmt.Fprintf(w, "%-8s %12s\n", fmt.Sprintf("p%g", q), time.Duration(hist.ValueAtQuantile(q)))
	}
	fmt.Fprintf(w, "%-8s %12s\n", "max", time.Duration(hist.Max()))
	fmt.Fprintf(w, "%-8s %12s\n", "mean", time.Duration(int64(hist.Mean())))
}
