package edvs

import "github.com/arloliu/go-edvs/event"

// assembler appends events to the open packets and decides when they are
// sealed into a container. It is confined to the acquisition goroutine.
type assembler struct {
	polarity *event.PolarityPacket
	special  *event.SpecialPacket

	polarityCapacity int
	specialCapacity  int

	// commit thresholds, snapshotted at DataStart; zero disables a check
	maxPacketSize int
	maxInterval   int64

	// commitTS is the reference of the interval check, -1 until the first event.
	commitTS int64
	// lastTS is the full timestamp of the last appended event.
	lastTS int64
}

func newAssembler() *assembler {
	a := &assembler{
		polarityCapacity: event.DefaultPolarityPacketCapacity,
		specialCapacity:  event.DefaultSpecialPacketCapacity,
	}
	a.reset()

	return a
}

// configure sets the commit thresholds. The initial polarity capacity follows
// the size threshold so that a size-bound container never grows its packet.
func (a *assembler) configure(maxPacketSize uint32, maxInterval uint32) {
	a.maxPacketSize = int(maxPacketSize)
	a.maxInterval = int64(maxInterval)

	a.polarityCapacity = event.DefaultPolarityPacketCapacity
	if a.maxPacketSize > 0 && a.maxPacketSize < a.polarityCapacity {
		a.polarityCapacity = a.maxPacketSize
	}
}

// reset discards the open packets and restarts the interval clock.
func (a *assembler) reset() {
	a.polarity = nil
	a.special = nil
	a.restartClock()
}

func (a *assembler) restartClock() {
	a.commitTS = -1
	a.lastTS = -1
}

// eventCount returns the number of events across the open packets.
func (a *assembler) eventCount() int {
	n := 0
	if a.polarity != nil {
		n += a.polarity.Len()
	}
	if a.special != nil {
		n += a.special.Len()
	}

	return n
}

// append adds ev to the open packet of its type. Packets opened by this call
// carry tsOverflow. It returns the sealed container when a commit threshold
// was reached, nil otherwise.
func (a *assembler) append(ev event.Event, tsOverflow int32) *event.Container {
	var overflow int32

	switch e := ev.(type) {
	case event.Polarity:
		if a.polarity == nil {
			a.polarity = event.NewPolarityPacket(a.polarityCapacity, tsOverflow)
		}
		a.polarity.Append(e)
		overflow = a.polarity.TSOverflow()

	case event.Special:
		if a.special == nil {
			a.special = event.NewSpecialPacket(a.specialCapacity, tsOverflow)
		}
		a.special.Append(e)
		overflow = a.special.TSOverflow()
	}

	a.lastTS = event.FullTimestamp(overflow, ev.EventTimestamp())
	if a.commitTS < 0 {
		a.commitTS = a.lastTS
	}

	if a.sizeReached() || a.intervalReached() {
		return a.commit()
	}

	return nil
}

func (a *assembler) sizeReached() bool {
	return a.maxPacketSize > 0 && a.eventCount() >= a.maxPacketSize
}

func (a *assembler) intervalReached() bool {
	return a.maxInterval > 0 && a.lastTS-a.commitTS >= a.maxInterval
}

// commit seals the non-empty open packets into a container stamped with the
// last event's timestamp. It returns nil when nothing is open.
func (a *assembler) commit() *event.Container {
	if a.eventCount() == 0 {
		return nil
	}

	packets := make([]event.Packet, 0, event.EventTypes)
	if a.special != nil {
		packets = append(packets, a.special)
	}
	if a.polarity != nil {
		packets = append(packets, a.polarity)
	}

	c := event.NewContainer(a.lastTS, packets...)
	a.polarity = nil
	a.special = nil
	a.commitTS = a.lastTS

	return c
}
