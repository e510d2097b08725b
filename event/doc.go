// Package event defines the event types produced by the eDVS driver and the
// packet and container types used to deliver them.
//
// # Events
//
// [Event] is a closed sum type with two variants:
//
//   - [Polarity] reports that the brightness of one pixel crossed a threshold,
//     with its sign.
//   - [Special] is a non-pixel marker such as a timestamp reset or wrap.
//
// Consumers switch exhaustively on the concrete type:
//
//	switch ev := e.(type) {
//	case event.Polarity:
//	    // ev.X, ev.Y, ev.Polarity
//	case event.Special:
//	    // ev.Kind
//	}
//
// # Packets and containers
//
// A [Packet] holds events of a single type and grows as events are appended.
// A [Container] bundles at most [EventTypes] packets that were sealed
// together; it is never empty and is never modified once built.
package event
