package edvs

import (
	"context"
	"time"

	"github.com/arloliu/go-edvs/event"
	"github.com/arloliu/go-edvs/internal/pool"
	"github.com/arloliu/go-edvs/internal/queue"
	"github.com/arloliu/go-edvs/logger"
)

// exchangeRetryInterval is the polling interval of a blocked producer.
const exchangeRetryInterval = time.Millisecond

// exchange is the bounded hand-off of sealed containers from the acquisition
// goroutine to DataGet callers.
//
// When full, a blocking exchange makes the producer wait for space, applying
// backpressure on acquisition. A non-blocking exchange evicts the oldest
// container instead; evictions are counted in Metrics.ContainersDropped.
type exchange struct {
	q       *queue.Bounded[*event.Container]
	session *Session
	metrics *Metrics
	logger  logger.Logger
}

func newExchange(capacity int, session *Session, metrics *Metrics, l logger.Logger) *exchange {
	return &exchange{
		q:       queue.NewBounded[*event.Container](capacity),
		session: session,
		metrics: metrics,
		logger:  l,
	}
}

// put hands c to the consumer side. It returns false if c was not queued
// because ctx was cancelled while waiting for space.
func (x *exchange) put(ctx context.Context, c *event.Container, blocking bool) bool {
	if !blocking {
		if _, evicted := x.q.PutOverwrite(c); evicted {
			x.metrics.addContainersDropped(1)
			x.logger.Warn("edvs: exchange buffer full, dropped oldest container",
				"capacity", x.q.Capacity())
			x.session.notify(Decrease, x.q.Len()-1)
		}
		x.session.notify(Increase, x.q.Len())

		return true
	}

	for !x.q.TryPut(c) {
		if !pool.Sleep(ctx, exchangeRetryInterval) {
			x.metrics.addContainersDropped(1)
			return false
		}
	}
	x.session.notify(Increase, x.q.Len())

	return true
}

// get returns the oldest queued container, or nil. It never blocks.
func (x *exchange) get() *event.Container {
	c, ok := x.q.Get()
	if !ok {
		return nil
	}
	x.session.notify(Decrease, x.q.Len())

	return c
}

// len returns the number of queued containers.
func (x *exchange) len() int {
	return x.q.Len()
}

// drain discards every queued container and returns how many were dropped.
func (x *exchange) drain() int {
	n := 0
	for {
		if _, ok := x.q.Get(); !ok {
			return n
		}
		n++
	}
}
