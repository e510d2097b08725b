package event

import (
	"fmt"
	"math"
)

// EventType identifies a packet's event type inside a Container.
type EventType uint8

const (
	// SpecialEventType identifies packets of Special events.
	SpecialEventType EventType = 0
	// PolarityEventType identifies packets of Polarity events.
	PolarityEventType EventType = 1

	// EventTypes is the number of event types a Container can hold.
	EventTypes = 2
)

func (t EventType) String() string {
	switch t {
	case SpecialEventType:
		return "Special"
	case PolarityEventType:
		return "Polarity"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is one decoded sensor event. The set of implementations is closed:
// Polarity and Special.
type Event interface {
	// Type returns the event type of the concrete event.
	Type() EventType
	// EventTimestamp returns the 32-bit reconstructed timestamp in microseconds.
	EventTimestamp() int32

	isEvent()
}

// Polarity is a brightness change of a single pixel.
type Polarity struct {
	Timestamp int32
	X         uint8
	Y         uint8
	// Polarity is true for a brightness increase (ON), false for a decrease (OFF).
	Polarity bool
}

func (Polarity) Type() EventType { return PolarityEventType }

func (e Polarity) EventTimestamp() int32 { return e.Timestamp }

func (Polarity) isEvent() {}

func (e Polarity) String() string {
	pol := "OFF"
	if e.Polarity {
		pol = "ON"
	}

	return fmt.Sprintf("Polarity{ts=%d x=%d y=%d %s}", e.Timestamp, e.X, e.Y, pol)
}

// SpecialType enumerates the kinds of Special events.
type SpecialType uint8

const (
	// TimestampWrap marks a big wrap: the 31-bit timestamp space was exhausted
	// and the timestamp overflow counter was incremented.
	TimestampWrap SpecialType = 0
	// TimestampReset marks a timestamp reset; later events restart from zero.
	TimestampReset SpecialType = 1
)

func (t SpecialType) String() string {
	switch t {
	case TimestampWrap:
		return "TimestampWrap"
	case TimestampReset:
		return "TimestampReset"
	default:
		return fmt.Sprintf("SpecialType(%d)", uint8(t))
	}
}

// WrapTimestamp is the timestamp carried by TimestampWrap events.
const WrapTimestamp int32 = math.MaxInt32

// Special is a non-pixel marker event.
type Special struct {
	Timestamp int32
	Kind      SpecialType
}

func (Special) Type() EventType { return SpecialEventType }

func (e Special) EventTimestamp() int32 { return e.Timestamp }

func (Special) isEvent() {}

func (e Special) String() string {
	return fmt.Sprintf("Special{ts=%d %s}", e.Timestamp, e.Kind)
}

// FullTimestamp combines a timestamp overflow counter and a 31-bit timestamp
// into a 64-bit timestamp.
func FullTimestamp(overflow int32, ts int32) int64 {
	return int64(overflow)<<31 | int64(ts)
}
