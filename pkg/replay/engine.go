package replay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erain9/chunkbook/pkg/core"
	"github.com/erain9/chunkbook/pkg/events"
	"github.com/erain9/chunkbook/pkg/otel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Summary counts what a replay did
type Summary struct {
	Events   int
	Creates  int
	Updates  int
	Removes  int
	Dumps    int
	Misses   int
	Duration time.Duration
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Int("events", s.Events).
		Int("creates", s.Creates).
		Int("updates", s.Updates).
		Int("removes", s.Removes).
		Int("dumps", s.Dumps).
		Int("misses", s.Misses).
		Dur("duration", s.Duration)
}

// verifier is implemented by side indexes that can check their own structure
type verifier interface {
	Verify() error
}

// Engine applies events to an order book in stream order
type Engine struct {
	book      *core.OrderBook
	sink      core.Sink
	logger    zerolog.Logger
	metrics   *otel.ReplayMetrics
	verify    bool
	spanAttrs []attribute.KeyValue
	summary   Summary
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for per-event debug output and the run summary
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics replaces the replay metrics, nil disables recording
func WithMetrics(m *otel.ReplayMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithVerify checks both side indexes after every mutation
func WithVerify(verify bool) Option {
	return func(e *Engine) {
		e.verify = verify
	}
}

// WithSpanAttributes adds attributes to the replay span started by Run
func WithSpanAttributes(attrs ...attribute.KeyValue) Option {
	return func(e *Engine) {
		e.spanAttrs = append(e.spanAttrs, attrs...)
	}
}

// New creates an Engine feeding book and writing dumps to sink
func New(book *core.OrderBook, sink core.Sink, opts ...Option) *Engine {
	e := &Engine{
		book:    book,
		sink:    sink,
		logger:  log.Logger,
		metrics: otel.GetReplayMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary returns the counters accumulated so far
func (e *Engine) Summary() Summary {
	return e.summary
}

// Apply dispatches a single event. Updates and removals of unknown
// identifiers are counted as misses, not errors.
func (e *Engine) Apply(ctx context.Context, ev events.Event) error {
	start := time.Now()
	err := e.apply(ctx, ev)
	e.metrics.RecordEvent(ctx, strings.ToLower(ev.Kind.String()), time.Since(start), err)
	return err
}

func (e *Engine) apply(ctx context.Context, ev events.Event) error {
	switch ev.Kind {
	case events.Create:
		order, err := e.book.Create(ctx, ev.Side, ev.Quantity, ev.Price)
		if err != nil {
			return err
		}
		e.summary.Creates++
		e.logger.Trace().EmbedObject(order).Msg("Order created")

	case events.Update:
		e.summary.Updates++
		if !e.book.Update(ctx, ev.ID, ev.Price) {
			e.summary.Misses++
			e.logger.Debug().Int64("id", ev.ID).Msg("Update ignored, order not found")
		}

	case events.Remove:
		e.summary.Removes++
		if _, ok := e.book.Remove(ctx, ev.ID); !ok {
			e.summary.Misses++
			e.logger.Debug().Int64("id", ev.ID).Msg("Remove ignored, order not found")
		}

	case events.Bids:
		e.summary.Dumps++
		if err := e.book.Dump(ctx, core.Buy, e.sink); err != nil {
			return err
		}

	case events.Asks:
		e.summary.Dumps++
		if err := e.book.Dump(ctx, core.Sell, e.sink); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: unknown kind %d", events.ErrMalformed, ev.Kind)
	}

	e.summary.Events++

	if e.verify && ev.Kind.Mutates() {
		return e.Verify()
	}
	return nil
}

// Verify checks the structure of both side indexes when they support it
func (e *Engine) Verify() error {
	for _, side := range []core.Side{core.Buy, core.Sell} {
		if v, ok := e.book.Side(side).(verifier); ok {
			if err := v.Verify(); err != nil {
				return fmt.Errorf("%s side: %w", side, err)
			}
		}
	}
	return nil
}

// Run applies every event of r in order until the stream ends, an event
// fails or ctx is cancelled.
func (e *Engine) Run(ctx context.Context, r *events.Reader) (Summary, error) {
	ctx, span := otel.StartSpan(ctx, otel.SpanReplay, e.spanAttrs...)
	defer span.End()

	start := time.Now()
	err := e.run(ctx, r)
	e.summary.Duration += time.Since(start)

	otel.AddAttributes(span,
		attribute.Int(otel.AttributeEventCount, e.summary.Events),
		attribute.Int(otel.AttributeMissCount, e.summary.Misses),
		attribute.Int(otel.AttributeBidDepth, e.book.Len(core.Buy)),
		attribute.Int(otel.AttributeAskDepth, e.book.Len(core.Sell)),
	)

	bids := e.book.Side(core.Buy).Stats()
	asks := e.book.Side(core.Sell).Stats()
	logEvent := e.logger.Info()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logEvent = e.logger.Error().Err(err)
	}
	logEvent.EmbedObject(e.summary).
		Int("bids", bids.Orders).
		Int("bid_chunks", bids.Chunks).
		Int("asks", asks.Orders).
		Int("ask_chunks", asks.Chunks).
		Msg("Replay finished")

	return e.summary, err
}

func (e *Engine) run(ctx context.Context, r *events.Reader) error {
	for ev, err := range r.All() {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Apply(ctx, ev); err != nil {
			return fmt.Errorf("line %d: %w", r.Line(), err)
		}
	}
	return nil
}
