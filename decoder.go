package datastar

import (
	"io"

	"github.com/tmaxmax/go-datastar/internal/parser"
)

// A Decoder reads Datastar events from a stream, such as the body of a response
// produced by a Generator.
type Decoder struct {
	p *parser.Parser
}

// NewDecoder returns a Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{p: parser.New(r)}
}

// Buffer sets the initial read buffer and the maximum size of a single event.
// It must be called before the first call to Next.
func (d *Decoder) Buffer(buf []byte, maxSize int) {
	d.p.Buffer(buf, maxSize)
}

// Next returns the next event in the stream. It returns io.EOF when the stream
// ends cleanly, a *UnmarshalError if an event is malformed or truncated, and
// the underlying read error otherwise.
func (d *Decoder) Next() (Event, error) {
	var e Event

	for f := (parser.Field{}); d.p.Next(&f); {
		if f.IsEventEnd() {
			if e.empty() {
				continue
			}
			if err := e.check(); err != nil {
				return Event{}, err
			}
			return e, nil
		}
		if err := e.apply(f); err != nil {
			return Event{}, err
		}
	}

	err := d.p.Err()
	switch {
	case err == parser.ErrUnexpectedEOF || (err == nil && !e.empty()):
		return Event{}, &UnmarshalError{Reason: ErrUnexpectedEOF}
	case err != nil:
		return Event{}, err
	default:
		return Event{}, io.EOF
	}
}
