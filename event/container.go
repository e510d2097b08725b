package event

import "fmt"

// Container is an immutable bundle of sealed packets that share one commit timestamp.
//
// A container holds at most one packet per EventType, never holds an empty
// packet and is never empty itself.
type Container struct {
	commitTimestamp int64
	packets         [EventTypes]Packet
	eventCount      int
}

// NewContainer seals the given packets into a container.
//
// Nil and empty packets are omitted. It returns nil if no packet holds an
// event. Passing two packets of the same type panics.
func NewContainer(commitTimestamp int64, packets ...Packet) *Container {
	c := &Container{commitTimestamp: commitTimestamp}

	for _, p := range packets {
		if p == nil || p.Len() == 0 {
			continue
		}

		t := p.Type()
		if int(t) >= EventTypes {
			panic(fmt.Sprintf("event: invalid packet type %s", t))
		}
		if c.packets[t] != nil {
			panic(fmt.Sprintf("event: duplicate %s packet in container", t))
		}

		p.seal()
		c.packets[t] = p
		c.eventCount += p.Len()
	}

	if c.eventCount == 0 {
		return nil
	}

	return c
}

// CommitTimestamp returns the full 64-bit timestamp at which the container was sealed.
func (c *Container) CommitTimestamp() int64 {
	return c.commitTimestamp
}

// Packet returns the packet of the given type, or nil if the container has none.
func (c *Container) Packet(t EventType) Packet {
	if int(t) >= EventTypes {
		return nil
	}

	return c.packets[t]
}

// PolarityPacket returns the polarity packet, or nil if the container has none.
func (c *Container) PolarityPacket() *PolarityPacket {
	p, _ := c.packets[PolarityEventType].(*PolarityPacket)
	return p
}

// SpecialPacket returns the special packet, or nil if the container has none.
func (c *Container) SpecialPacket() *SpecialPacket {
	p, _ := c.packets[SpecialEventType].(*SpecialPacket)
	return p
}

// Packets returns the packets of the container ordered by EventType.
func (c *Container) Packets() []Packet {
	out := make([]Packet, 0, EventTypes)
	for _, p := range c.packets {
		if p != nil {
			out = append(out, p)
		}
	}

	return out
}

// PacketCount returns the number of packets in the container.
func (c *Container) PacketCount() int {
	n := 0
	for _, p := range c.packets {
		if p != nil {
			n++
		}
	}

	return n
}

// EventCount returns the total number of events across all packets.
func (c *Container) EventCount() int {
	return c.eventCount
}

// FirstTimestamp returns the lowest full timestamp of the first event across packets.
func (c *Container) FirstTimestamp() int64 {
	first := int64(-1)
	for _, p := range c.packets {
		ts := firstTimestamp(p)
		if ts >= 0 && (first < 0 || ts < first) {
			first = ts
		}
	}

	return first
}

// LastTimestamp returns the highest full timestamp of the last event across packets.
func (c *Container) LastTimestamp() int64 {
	last := int64(-1)
	for _, p := range c.packets {
		if ts := lastTimestamp(p); ts > last {
			last = ts
		}
	}

	return last
}

func firstTimestamp(p Packet) int64 {
	switch pkt := p.(type) {
	case *PolarityPacket:
		return pkt.FirstTimestamp()
	case *SpecialPacket:
		return pkt.FirstTimestamp()
	default:
		return -1
	}
}

func lastTimestamp(p Packet) int64 {
	switch pkt := p.(type) {
	case *PolarityPacket:
		return pkt.LastTimestamp()
	case *SpecialPacket:
		return pkt.LastTimestamp()
	default:
		return -1
	}
}
