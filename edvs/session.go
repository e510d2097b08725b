package edvs

import (
	"sync"

	"github.com/google/uuid"
)

// NotificationKind tells whether the exchange buffer gained or lost a container.
type NotificationKind uint8

const (
	// Increase is sent when a container was put into the exchange buffer.
	Increase NotificationKind = iota + 1
	// Decrease is sent when a container left the exchange buffer.
	Decrease
)

func (k NotificationKind) String() string {
	switch k {
	case Increase:
		return "Increase"
	case Decrease:
		return "Decrease"
	default:
		return "Unknown"
	}
}

// Notification reports an exchange buffer occupancy change.
type Notification struct {
	Kind NotificationKind
	// Occupancy is the number of queued containers right after the change.
	Occupancy int
}

// Session is the handle of one acquisition run, from DataStart until the
// acquisition goroutine terminates.
//
// Notifications are delivered without ever blocking the acquisition goroutine;
// notifications that do not fit the channel are dropped and counted in
// Metrics.NotificationsDropped. The channel is never closed, use Done to
// detect termination.
type Session struct {
	id            string
	notifications chan Notification
	done          chan struct{}
	doneOnce      sync.Once
	metrics       *Metrics

	mu  sync.Mutex
	err error
}

func newSession(notifyBufferSize int, metrics *Metrics) *Session {
	return &Session{
		id:            uuid.NewString(),
		notifications: make(chan Notification, notifyBufferSize),
		done:          make(chan struct{}),
		metrics:       metrics,
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string {
	return s.id
}

// Notifications returns the channel of exchange buffer occupancy changes.
func (s *Session) Notifications() <-chan Notification {
	return s.notifications
}

// Done returns a channel closed exactly once when the acquisition goroutine
// has terminated, either after DataStop or on a fatal transport error.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that terminated the session, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// IsDone reports whether the session has terminated.
func (s *Session) IsDone() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) notify(kind NotificationKind, occupancy int) {
	select {
	case s.notifications <- Notification{Kind: kind, Occupancy: occupancy}:
	default:
		s.metrics.incNotificationsDropped()
	}
}

// fail records the first terminal error.
func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		s.err = err
	}
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}
