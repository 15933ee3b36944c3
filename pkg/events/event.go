package events

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/erain9/chunkbook/pkg/core"
)

// ErrMalformed is wrapped by every parse failure
var ErrMalformed = errors.New("malformed event")

// Kind identifies the command carried by an event line
type Kind int

// Event kinds
const (
	Create Kind = iota
	Update
	Remove
	Bids
	Asks
)

// String returns the command keyword of the kind
func (k Kind) String() string {
	switch k {
	case Create:
		return "CREATE"
	case Update:
		return "UPDATE"
	case Remove:
		return "REMOVE"
	case Bids:
		return "BIDS"
	case Asks:
		return "ASKS"
	default:
		return "UNKNOWN"
	}
}

// Mutates reports whether applying the kind changes the book
func (k Kind) Mutates() bool {
	switch k {
	case Create, Update, Remove:
		return true
	default:
		return false
	}
}

// Event is one parsed line of an event stream. Only the fields used by the
// kind are meaningful: Create sets Side, Quantity and Price, Update sets ID
// and Price, Remove sets ID.
type Event struct {
	Kind     Kind
	Side     core.Side
	Quantity int64
	Price    int64
	ID       int64
}

// NewCreate builds a CREATE event
func NewCreate(side core.Side, quantity, price int64) Event {
	return Event{Kind: Create, Side: side, Quantity: quantity, Price: price}
}

// NewUpdate builds an UPDATE event
func NewUpdate(id, price int64) Event {
	return Event{Kind: Update, ID: id, Price: price}
}

// NewRemove builds a REMOVE event
func NewRemove(id int64) Event {
	return Event{Kind: Remove, ID: id}
}

// String renders the event as a line Parse accepts
func (e Event) String() string {
	switch e.Kind {
	case Create:
		return fmt.Sprintf("CREATE %s %d %d", e.Side, e.Quantity, e.Price)
	case Update:
		return fmt.Sprintf("UPDATE %d %d", e.ID, e.Price)
	case Remove:
		return fmt.Sprintf("REMOVE %d", e.ID)
	default:
		return e.Kind.String()
	}
}

// Parse decodes one non-blank event line. Tokens are separated by any run of
// whitespace; numbers are base-10 integers.
func Parse(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{}, fmt.Errorf("%w: empty line", ErrMalformed)
	}

	keyword, args := fields[0], fields[1:]
	switch keyword {
	case "CREATE":
		if err := arity(keyword, args, 3); err != nil {
			return Event{}, err
		}
		side, err := core.ParseSide(args[0])
		if err != nil {
			return Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		quantity, err := parseInt("quantity", args[1])
		if err != nil {
			return Event{}, err
		}
		price, err := parseInt("price", args[2])
		if err != nil {
			return Event{}, err
		}
		return NewCreate(side, quantity, price), nil

	case "UPDATE":
		if err := arity(keyword, args, 2); err != nil {
			return Event{}, err
		}
		id, err := parseInt("id", args[0])
		if err != nil {
			return Event{}, err
		}
		price, err := parseInt("price", args[1])
		if err != nil {
			return Event{}, err
		}
		return NewUpdate(id, price), nil

	case "REMOVE":
		if err := arity(keyword, args, 1); err != nil {
			return Event{}, err
		}
		id, err := parseInt("id", args[0])
		if err != nil {
			return Event{}, err
		}
		return NewRemove(id), nil

	case "BIDS":
		if err := arity(keyword, args, 0); err != nil {
			return Event{}, err
		}
		return Event{Kind: Bids}, nil

	case "ASKS":
		if err := arity(keyword, args, 0); err != nil {
			return Event{}, err
		}
		return Event{Kind: Asks}, nil

	default:
		return Event{}, fmt.Errorf("%w: unknown command %q", ErrMalformed, keyword)
	}
}

func arity(keyword string, args []string, want int) error {
	if len(args) != want {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrMalformed, keyword, want, len(args))
	}
	return nil
}

func parseInt(field, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformed, field, s)
	}
	return n, nil
}

// ParseError reports a malformed line of an event stream
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
