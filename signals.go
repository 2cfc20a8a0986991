package datastar

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// MergeSignalsOptions configures a merge-signals event.
// The zero value uses the protocol defaults.
type MergeSignalsOptions struct {
	EventID       EventID
	RetryDuration Duration
	// OnlyIfMissing tells the client to set only the signals it doesn't already have.
	OnlyIfMissing bool
}

// MergeSignals creates an event that merges the given JSON-encoded signals
// into the client's signal store. Every line of signals becomes its own data line.
func MergeSignals(signals string, opts MergeSignalsOptions) Event {
	e := newEvent(EventTypeMergeSignals, opts.EventID, opts.RetryDuration)

	if opts.OnlyIfMissing {
		e.push(keyOnlyIfMissing, "true")
	}
	e.pushLines(keySignals, signals)

	return e
}

// SignalsError is returned when signals cannot be encoded to JSON.
type SignalsError struct {
	Err error
}

func (s *SignalsError) Error() string {
	return fmt.Sprintf("go-datastar: failed to encode signals: %v", s.Err)
}

func (s *SignalsError) Unwrap() error {
	return s.Err
}

// MarshalSignals encodes v to JSON and creates a merge-signals event from it.
// If v can't be encoded, a *SignalsError is returned.
func MarshalSignals(v any, opts MergeSignalsOptions) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, &SignalsError{Err: err}
	}
	return MergeSignals(string(data), opts), nil
}

// RemoveSignalsOptions configures a remove-signals event.
// The zero value uses the protocol defaults.
type RemoveSignalsOptions struct {
	EventID       EventID
	RetryDuration Duration
}

// RemoveSignals creates an event that removes the signals at the given dotted paths
// (for example "user.name") from the client's signal store.
func RemoveSignals(paths []string, opts RemoveSignalsOptions) Event {
	e := newEvent(EventTypeRemoveSignals, opts.EventID, opts.RetryDuration)

	for _, p := range paths {
		e.pushValue(keyPaths, p)
	}

	return e
}

// Signals builds a JSON object of signals using dotted paths, the same path
// syntax RemoveSignals uses. The zero value is not usable; create one with NewSignals.
//
// The first error encountered is kept and returned by JSON and Event; later
// calls are no-ops.
type Signals struct {
	raw string
	err error
}

// NewSignals returns an empty signals object.
func NewSignals() *Signals {
	return &Signals{raw: "{}"}
}

// Set sets the value at path, creating intermediate objects as needed.
// The value is encoded to JSON.
func (s *Signals) Set(path string, value any) *Signals {
	if s.err == nil {
		s.raw, s.err = sjson.Set(s.raw, path, value)
	}
	return s
}

// SetRaw sets the value at path to the given, already encoded, JSON.
func (s *Signals) SetRaw(path, rawJSON string) *Signals {
	if s.err == nil {
		s.raw, s.err = sjson.SetRaw(s.raw, path, rawJSON)
	}
	return s
}

// Delete removes the value at path. Deleting a missing path does nothing.
func (s *Signals) Delete(path string) *Signals {
	if s.err == nil {
		s.raw, s.err = sjson.Delete(s.raw, path)
	}
	return s
}

// JSON returns the encoded signals object.
func (s *Signals) JSON() (string, error) {
	if s.err != nil {
		return "", &SignalsError{Err: s.err}
	}
	return s.raw, nil
}

// Event creates a merge-signals event with the built signals.
func (s *Signals) Event(opts MergeSignalsOptions) (Event, error) {
	raw, err := s.JSON()
	if err != nil {
		return Event{}, err
	}
	return MergeSignals(raw, opts), nil
}
