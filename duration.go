package datastar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Protocol defaults. Fields left at these values are not written to the wire.
const (
	DefaultSettleDuration = 300 * time.Millisecond
	DefaultRetryDuration  = time.Second
)

const (
	defaultSettleMillis = uint32(DefaultSettleDuration / time.Millisecond)
	defaultRetryMillis  = uint32(DefaultRetryDuration / time.Millisecond)
)

// ErrDurationOutOfRange is returned when a duration is negative or its
// millisecond count does not fit in an unsigned 32-bit integer.
var ErrDurationOutOfRange = errors.New("go-datastar: duration out of range")

// Duration is a millisecond-precision duration sent to the client.
// Its range is checked when it is created, so encoding never fails.
//
// The zero value is an unset duration, which stands for the protocol default.
type Duration struct {
	millis uint32
	set    bool
}

// NewDuration converts d to a Duration, truncating it to whole milliseconds.
func NewDuration(d time.Duration) (Duration, error) {
	if d < 0 || d.Milliseconds() > math.MaxUint32 {
		return Duration{}, fmt.Errorf("%w: %s", ErrDurationOutOfRange, d)
	}
	return Duration{millis: uint32(d.Milliseconds()), set: true}, nil
}

// MustDuration is the same as NewDuration, but it panics if d is out of range.
func MustDuration(d time.Duration) Duration {
	v, err := NewDuration(d)
	if err != nil {
		panic(err)
	}
	return v
}

// IsSet reports whether the duration was explicitly given.
func (d Duration) IsSet() bool {
	return d.set
}

// Milliseconds returns the duration as a millisecond count.
func (d Duration) Milliseconds() uint32 {
	return d.millis
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.millis) * time.Millisecond
}

func (d Duration) String() string {
	if !d.set {
		return "unset"
	}
	return d.Std().String()
}

// differsFrom reports whether the duration is set to something other than the default.
func (d Duration) differsFrom(def uint32) bool {
	return d.set && d.millis != def
}

func (d Duration) format() string {
	return strconv.FormatUint(uint64(d.millis), 10)
}
