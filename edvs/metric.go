package edvs

import "sync/atomic"

// Metrics contains atomic counters of a Device.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// BytesRead indicates the number of bytes read from the serial port.
	BytesRead atomic.Uint64
	// PolarityEvents indicates the number of decoded polarity events.
	PolarityEvents atomic.Uint64
	// SpecialEvents indicates the number of emitted special events.
	SpecialEvents atomic.Uint64
	// DecodeErrors indicates the number of bytes skipped while resynchronising.
	DecodeErrors atomic.Uint64
	// TimestampWraps indicates the number of big timestamp wraps.
	TimestampWraps atomic.Uint64

	// ContainersCommitted indicates the number of containers sealed.
	ContainersCommitted atomic.Uint64
	// ContainersDropped indicates the number of containers evicted from a full
	// exchange buffer in non-blocking mode, or discarded by DataStop.
	ContainersDropped atomic.Uint64
	// NotificationsDropped indicates the number of occupancy notifications
	// lost because the session's notification channel was full.
	NotificationsDropped atomic.Uint64

	// SessionCount indicates the number of acquisition sessions started.
	SessionCount atomic.Uint32
}

func (m *Metrics) addBytesRead(n int) {
	m.BytesRead.Add(uint64(n)) //nolint:gosec
}

func (m *Metrics) incPolarityEvents() {
	m.PolarityEvents.Add(1)
}

func (m *Metrics) incSpecialEvents() {
	m.SpecialEvents.Add(1)
}

func (m *Metrics) addDecodeErrors(n int) {
	m.DecodeErrors.Add(uint64(n)) //nolint:gosec
}

func (m *Metrics) incTimestampWraps() {
	m.TimestampWraps.Add(1)
}

func (m *Metrics) incContainersCommitted() {
	m.ContainersCommitted.Add(1)
}

func (m *Metrics) addContainersDropped(n int) {
	m.ContainersDropped.Add(uint64(n)) //nolint:gosec
}

func (m *Metrics) incNotificationsDropped() {
	m.NotificationsDropped.Add(1)
}

func (m *Metrics) incSessionCount() {
	m.SessionCount.Add(1)
}
