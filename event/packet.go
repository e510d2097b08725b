package event

// Default initial packet capacities. They only size the first allocation;
// packets grow as events are appended.
const (
	DefaultPolarityPacketCapacity = 4096
	DefaultSpecialPacketCapacity  = 128
)

// Packet is the type-erased view of a packet, used when iterating a Container.
// Use a type switch on *PolarityPacket / *SpecialPacket to access typed events.
type Packet interface {
	// Type returns the event type of every event in the packet.
	Type() EventType
	// Len returns the number of events.
	Len() int
	// TSOverflow returns the timestamp overflow counter shared by all events.
	TSOverflow() int32
	// Event returns the i-th event.
	Event(i int) Event
	// Sealed reports whether the packet is part of a container and immutable.
	Sealed() bool

	seal()
}

// eventPacket is the growable storage shared by the typed packets.
type eventPacket[E Event] struct {
	events     []E
	tsOverflow int32
	sealed     bool
}

func newEventPacket[E Event](capacity int, tsOverflow int32) eventPacket[E] {
	if capacity < 1 {
		capacity = 1
	}

	return eventPacket[E]{events: make([]E, 0, capacity), tsOverflow: tsOverflow}
}

// Len returns the number of events in the packet.
func (p *eventPacket[E]) Len() int { return len(p.events) }

// Cap returns the number of events the current storage can hold without growing.
func (p *eventPacket[E]) Cap() int { return cap(p.events) }

// TSOverflow returns the timestamp overflow counter of the packet.
func (p *eventPacket[E]) TSOverflow() int32 { return p.tsOverflow }

// Sealed reports whether the packet was sealed into a container.
func (p *eventPacket[E]) Sealed() bool { return p.sealed }

// Append adds ev at the packet's cursor, growing the storage when needed.
//
// Appending to a sealed packet is a programming error and panics.
func (p *eventPacket[E]) Append(ev E) {
	if p.sealed {
		panic("event: append to sealed packet")
	}
	p.events = append(p.events, ev)
}

// Events returns the events of the packet. The returned slice must be treated as read-only.
func (p *eventPacket[E]) Events() []E { return p.events }

// Event returns the i-th event.
func (p *eventPacket[E]) Event(i int) Event { return p.events[i] }

// FirstTimestamp returns the full 64-bit timestamp of the first event, or -1 if empty.
func (p *eventPacket[E]) FirstTimestamp() int64 {
	if len(p.events) == 0 {
		return -1
	}

	return FullTimestamp(p.tsOverflow, p.events[0].EventTimestamp())
}

// LastTimestamp returns the full 64-bit timestamp of the last event, or -1 if empty.
func (p *eventPacket[E]) LastTimestamp() int64 {
	if len(p.events) == 0 {
		return -1
	}

	return FullTimestamp(p.tsOverflow, p.events[len(p.events)-1].EventTimestamp())
}

func (p *eventPacket[E]) seal() {
	p.sealed = true
	// Cap the slice so a consumer append can never write into packet storage.
	p.events = p.events[:len(p.events):len(p.events)]
}

// PolarityPacket is a packet of Polarity events.
type PolarityPacket struct {
	eventPacket[Polarity]
}

var _ Packet = (*PolarityPacket)(nil)

// NewPolarityPacket creates an empty polarity packet with the given initial capacity.
func NewPolarityPacket(capacity int, tsOverflow int32) *PolarityPacket {
	return &PolarityPacket{eventPacket: newEventPacket[Polarity](capacity, tsOverflow)}
}

// Type returns PolarityEventType.
func (*PolarityPacket) Type() EventType { return PolarityEventType }

// SpecialPacket is a packet of Special events.
type SpecialPacket struct {
	eventPacket[Special]
}

var _ Packet = (*SpecialPacket)(nil)

// NewSpecialPacket creates an empty special packet with the given initial capacity.
func NewSpecialPacket(capacity int, tsOverflow int32) *SpecialPacket {
	return &SpecialPacket{eventPacket: newEventPacket[Special](capacity, tsOverflow)}
}

// Type returns SpecialEventType.
func (*SpecialPacket) Type() EventType { return SpecialEventType }
