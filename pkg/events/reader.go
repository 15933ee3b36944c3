package events

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

const maxLineSize = 1 << 20

// Reader decodes an event stream line by line. Blank lines are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	err     error
}

// NewReader creates a Reader over r
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Line returns the 1-based number of the last line read
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next event. It returns io.EOF once the stream is
// exhausted, a *ParseError for a malformed line and the underlying error if
// reading fails. Errors are sticky.
func (r *Reader) Next() (Event, error) {
	if r.err != nil {
		return Event{}, r.err
	}

	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		ev, err := Parse(text)
		if err != nil {
			r.err = &ParseError{Line: r.line, Text: text, Err: err}
			return Event{}, r.err
		}
		return ev, nil
	}

	r.err = r.scanner.Err()
	if r.err == nil {
		r.err = io.EOF
	}
	return Event{}, r.err
}

// All yields every remaining event. A failure is yielded once with a zero
// Event and ends the sequence; io.EOF is never yielded.
func (r *Reader) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll decodes the whole stream
func ReadAll(r io.Reader) ([]Event, error) {
	var out []Event
	for ev, err := range NewReader(r).All() {
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
	return out, nil
}
