package datastar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tmaxmax/go-datastar/internal/parser"
)

// EventType is the kind of a Datastar event. Each kind has a fixed name on the wire.
type EventType uint8

const (
	_ EventType = iota
	EventTypeMergeFragments
	EventTypeRemoveFragments
	EventTypeMergeSignals
	EventTypeRemoveSignals
	EventTypeExecuteScript
)

var eventTypeNames = [...]string{
	EventTypeMergeFragments:  "datastar-merge-fragments",
	EventTypeRemoveFragments: "datastar-remove-fragments",
	EventTypeMergeSignals:    "datastar-merge-signals",
	EventTypeRemoveSignals:   "datastar-remove-signals",
	EventTypeExecuteScript:   "datastar-execute-script",
}

// String returns the event type's wire name, or an empty string for unknown types.
func (t EventType) String() string {
	if !t.valid() {
		return ""
	}
	return eventTypeNames[t]
}

func (t EventType) valid() bool {
	return t > 0 && int(t) < len(eventTypeNames)
}

// ParseEventType returns the event type with the given wire name.
func ParseEventType(name string) (EventType, bool) {
	for t := EventTypeMergeFragments; t.valid(); t++ {
		if eventTypeNames[t] == name {
			return t, true
		}
	}
	return 0, false
}

// Keys of the data lines written by the encoders.
const (
	keyMergeMode         = "mergeMode"
	keySelector          = "selector"
	keySettleDuration    = "settleDuration"
	keyUseViewTransition = "useViewTransition"
	keyFragments         = "fragments"
	keyOnlyIfMissing     = "onlyIfMissing"
	keySignals           = "signals"
	keyPaths             = "paths"
	keyAutoRemove        = "autoRemove"
	keyAttributes        = "attributes"
	keyScript            = "script"
)

// A DataLine is a single "data: key value" line of an event.
type DataLine struct {
	Key   string
	Value string
}

// fieldBytes holds the byte representation of each field type along with a colon at the end.
var (
	fieldBytesEvent         = []byte(parser.FieldNameEvent + ": ")
	fieldBytesID            = []byte(parser.FieldNameID + ": ")
	fieldBytesRetryDuration = []byte(parser.FieldNameRetryDuration + ": ")
	fieldBytesData          = []byte(parser.FieldNameData + ": ")
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Event is a single encoded Datastar event. Events are created by the encoder
// functions of this package (MergeFragments, RemoveSignals and so on) and are
// never modified afterwards.
//
// The zero Event has no type and writes nothing.
type Event struct {
	lines []DataLine
	id    EventID
	retry Duration
	typ   EventType
}

func newEvent(typ EventType, id EventID, retry Duration) Event {
	e := Event{typ: typ, id: id}
	if retry.differsFrom(defaultRetryMillis) {
		e.retry = retry
	}
	return e
}

func (e *Event) push(key, value string) {
	e.lines = append(e.lines, DataLine{Key: key, Value: value})
}

// pushLines adds one data line with the given key for every line of text.
func (e *Event) pushLines(key, text string) {
	parser.Lines(text, func(line string) {
		e.push(key, line)
	})
}

// pushValue adds a single-valued field. An empty value still gets its own
// data line; values with newlines are split like pushLines does.
func (e *Event) pushValue(key, value string) {
	if value == "" {
		e.push(key, "")
		return
	}
	e.pushLines(key, value)
}

// Type returns the event's type.
func (e Event) Type() EventType {
	return e.typ
}

// ID returns the event's ID. It is unset if no ID was given.
func (e Event) ID() EventID {
	return e.id
}

// Retry returns the reconnection delay the event instructs the client to use.
// It is DefaultRetryDuration unless a different duration was given.
func (e Event) Retry() Duration {
	if !e.retry.IsSet() {
		return Duration{millis: defaultRetryMillis, set: true}
	}
	return e.retry
}

// Data returns a copy of the event's data lines, in wire order.
func (e Event) Data() []DataLine {
	return append([]DataLine(nil), e.lines...)
}

// Values returns, in order, the values of all the data lines with the given key.
func (e Event) Values(key string) []string {
	var values []string
	for _, l := range e.lines {
		if l.Key == key {
			values = append(values, l.Value)
		}
	}
	return values
}

func writeField(w io.Writer, name []byte, values ...string) (int64, error) {
	n, err := w.Write(name)
	if err != nil {
		return int64(n), err
	}
	for i, v := range values {
		if i > 0 {
			m, err := w.Write(space)
			n += m
			if err != nil {
				return int64(n), err
			}
		}
		m, err := io.WriteString(w, v)
		n += m
		if err != nil {
			return int64(n), err
		}
	}
	m, err := w.Write(newline)
	return int64(n + m), err
}

// WriteTo writes the wire representation of the event to w.
// The block always ends with a single blank line.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	if !e.typ.valid() {
		return 0, nil
	}

	n, err := writeField(w, fieldBytesEvent, e.typ.String())
	if err != nil {
		return n, err
	}

	var m int64
	if e.id.IsSet() {
		m, err = writeField(w, fieldBytesID, e.id.String())
		n += m
		if err != nil {
			return n, err
		}
	}
	if e.retry.IsSet() {
		m, err = writeField(w, fieldBytesRetryDuration, e.retry.format())
		n += m
		if err != nil {
			return n, err
		}
	}
	for _, l := range e.lines {
		m, err = writeField(w, fieldBytesData, l.Key, l.Value)
		n += m
		if err != nil {
			return n, err
		}
	}

	o, err := w.Write(newline)
	return n + int64(o), err
}

// MarshalText returns the wire representation of the event.
// The representation is written to a bytes.Buffer, which means the error is always nil.
func (e Event) MarshalText() ([]byte, error) {
	b := bytes.Buffer{}
	_, err := e.WriteTo(&b)
	return b.Bytes(), err
}

// String returns the wire representation of the event.
func (e Event) String() string {
	s := strings.Builder{}
	_, _ = e.WriteTo(&s)
	return s.String()
}

// UnmarshalError is the error returned when decoding an event fails.
// If the error is related to a specific field, FieldName will be a non-empty string.
// Reason is always present.
type UnmarshalError struct {
	Reason    error
	FieldName string
	// The value of the invalid field.
	FieldValue string
}

func (u *UnmarshalError) Error() string {
	if u.FieldName == "" {
		return fmt.Sprintf("go-datastar: unmarshal event error: %s", u.Reason.Error())
	}
	return fmt.Sprintf("go-datastar: unmarshal event error, %s field invalid: %s. contents: %s", u.FieldName, u.Reason.Error(), u.FieldValue)
}

func (u *UnmarshalError) Unwrap() error {
	return u.Reason
}

var (
	// ErrUnexpectedEOF is returned when decoding an event from an input that doesn't end in a newline.
	ErrUnexpectedEOF = parser.ErrUnexpectedEOF
	// ErrUnknownEventType is returned when decoding an event whose name is not a Datastar event.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrMissingEventType is returned when decoding an event without an event field.
	ErrMissingEventType = errors.New("missing event type")
)

// apply sets the field on the event being decoded.
func (e *Event) apply(f parser.Field) error {
	switch f.Name {
	case parser.FieldNameEvent:
		t, ok := ParseEventType(f.Value)
		if !ok {
			return &UnmarshalError{FieldName: string(f.Name), FieldValue: f.Value, Reason: ErrUnknownEventType}
		}
		e.typ = t
	case parser.FieldNameID:
		e.id = EventID{value: f.Value, set: true}
	case parser.FieldNameRetryDuration:
		ms, err := strconv.ParseUint(f.Value, 10, 32)
		if err != nil {
			return &UnmarshalError{FieldName: string(f.Name), FieldValue: f.Value, Reason: errors.Unwrap(err)}
		}
		e.retry = Duration{millis: uint32(ms), set: true}
	case parser.FieldNameData:
		key, value, _ := strings.Cut(f.Value, " ")
		e.push(key, value)
	}
	return nil
}

func (e *Event) empty() bool {
	return e.typ == 0 && len(e.lines) == 0 && !e.id.IsSet() && !e.retry.IsSet()
}

func (e *Event) check() error {
	if e.typ == 0 {
		return &UnmarshalError{Reason: ErrMissingEventType}
	}
	if !e.retry.differsFrom(defaultRetryMillis) {
		e.retry = Duration{}
	}
	return nil
}

// UnmarshalText decodes the first event found in p into the receiver.
// The receiver is reset before decoding. Comments and unknown fields are ignored.
// Every field, including the last one, must end in a newline.
//
// All returned errors are of type *UnmarshalError.
func (e *Event) UnmarshalText(p []byte) error {
	*e = Event{}

	s := parser.NewFieldParser(string(p))

	for f := (parser.Field{}); s.Next(&f); {
		if f.IsEventEnd() {
			break
		}
		if err := e.apply(f); err != nil {
			*e = Event{}
			return err
		}
	}

	if s.Err() != nil || e.empty() {
		*e = Event{}
		return &UnmarshalError{Reason: ErrUnexpectedEOF}
	}
	if err := e.check(); err != nil {
		*e = Event{}
		return err
	}
	return nil
}
