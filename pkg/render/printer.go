package render

import (
	"bufio"
	"io"
	"iter"

	"github.com/erain9/chunkbook/pkg/core"
	"github.com/fatih/color"
)

// Printer writes book dumps in the plain text format:
//
//	Bids
//	\tBuy 110 3
//	\tBuy 100 5
//	<blank line>
//
// Output is buffered until Flush.
type Printer struct {
	w      *bufio.Writer
	silent bool
	bids   *color.Color
	asks   *color.Color
}

var _ core.Sink = (*Printer)(nil)

// Option configures a Printer
type Option func(*Printer)

// WithSilent drops every dump
func WithSilent(silent bool) Option {
	return func(p *Printer) {
		p.silent = silent
	}
}

// WithColor paints the Bids header green and the Asks header red
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		if enabled {
			p.bids.EnableColor()
			p.asks.EnableColor()
		} else {
			p.bids.DisableColor()
			p.asks.DisableColor()
		}
	}
}

// New creates a Printer writing to w
func New(w io.Writer, opts ...Option) *Printer {
	p := &Printer{
		w:    bufio.NewWriter(w),
		bids: color.New(color.FgGreen),
		asks: color.New(color.FgRed),
	}
	p.bids.DisableColor()
	p.asks.DisableColor()

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Silent reports whether the printer drops dumps
func (p *Printer) Silent() bool {
	return p.silent
}

// WriteSide implements core.Sink
func (p *Printer) WriteSide(side core.Side, orders iter.Seq[core.Order]) error {
	if p.silent {
		return nil
	}

	header := p.asks.Sprint("Asks")
	if side == core.Buy {
		header = p.bids.Sprint("Bids")
	}
	p.w.WriteString(header)
	p.w.WriteByte('\n')

	for order := range orders {
		p.w.WriteByte('\t')
		p.w.WriteString(order.String())
		p.w.WriteByte('\n')
	}

	// bufio.Writer keeps the first write error and reports it here
	_, err := p.w.WriteString("\n")
	return err
}

// Flush writes any buffered output
func (p *Printer) Flush() error {
	return p.w.Flush()
}

// Discard is a sink that drains every dump without writing it
type Discard struct{}

var _ core.Sink = Discard{}

// WriteSide implements core.Sink
func (Discard) WriteSide(_ core.Side, orders iter.Seq[core.Order]) error {
	for range orders {
	}
	return nil
}
