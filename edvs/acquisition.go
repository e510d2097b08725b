package edvs

import (
	"context"
	"fmt"

	"github.com/arloliu/go-edvs/event"
	"github.com/arloliu/go-edvs/logger"
	"github.com/arloliu/go-edvs/transport"
)

const acquisitionTaskName = "acquisition"

// DataStart starts acquisition and returns the new session.
//
// It opens a fresh exchange buffer and decoding state, selects the event
// output format and, if DataExchangeStartProducers is set, switches the sensor
// output on. Calling DataStart while acquisition runs returns the current
// session. A session that terminated on a transport failure is reaped first.
func (d *Device) DataStart() (*Session, error) {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if d.closed.Load() {
		return nil, ErrDeviceClosed
	}

	if !d.opState.IsStopped() {
		if sess := d.session.Load(); sess != nil && !sess.IsDone() {
			return sess, nil
		}

		d.logger.Info("edvs: reaping terminated session")
		_ = d.stopLocked()
	}

	if !d.opState.ToStarting() {
		return nil, fmt.Errorf("edvs: cannot start acquisition in %s state", d.opState.String())
	}

	sess := newSession(d.cfg.notifyBufferSize, &d.metrics)
	sessLogger := d.logger.With("session", sess.ID())
	x := newExchange(int(d.bufferSize.Load()), sess, &d.metrics, sessLogger)

	pipe := newPipeline(&d.metrics, sessLogger, d.observeTimestampReset)
	pipe.reset(d.maxPacketSize.Load(), d.maxInterval.Load())

	d.tsResetRequest.Store(false)
	d.dvsTSReset.Store(false)

	startProducers := d.startProducers.Load()
	cmds := []string{cmdEventFormat}
	if startProducers {
		cmds = append(cmds, cmdDVSRunOn)
	}
	if err := d.sendCommands(cmds...); err != nil {
		d.opState.Set(StoppedState)
		return nil, err
	}
	if startProducers {
		d.dvsRunning.Store(true)
	}

	d.session.Store(sess)
	d.exchange.Store(x)
	d.running.Store(true)

	acq := &acquisition{
		dev:      d,
		port:     d.port,
		session:  sess,
		exchange: x,
		pipe:     pipe,
		logger:   sessLogger,
	}

	if err := d.taskMgr.Start(acquisitionTaskName, acq.step, acq.exit); err != nil {
		d.running.Store(false)
		sess.fail(err)
		sess.finish()
		d.opState.Set(StoppedState)

		return nil, fmt.Errorf("edvs: failed to start acquisition: %w", err)
	}

	d.opState.ToRunning()
	d.metrics.incSessionCount()
	sessLogger.Info("edvs: acquisition started",
		"buffer_size", x.q.Capacity(),
		"max_packet_size", d.maxPacketSize.Load(),
		"max_interval", d.maxInterval.Load())

	return sess, nil
}

// DataStop stops acquisition and waits for the acquisition goroutine to exit.
//
// If DataExchangeStopProducers is set, the sensor output is switched off.
// Containers still queued in the exchange buffer and the open packets are
// discarded, so DataGet returns nil afterwards. Calling DataStop on a stopped
// device is a no-op.
func (d *Device) DataStop() error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if d.opState.IsStopped() {
		return nil
	}

	return d.stopLocked()
}

// stopLocked stops the current session. The caller holds lifecycleMu.
func (d *Device) stopLocked() error {
	d.opState.ToStopping()
	d.running.Store(false)

	d.taskMgr.Stop()
	d.taskMgr.Wait()

	var err error
	sess := d.session.Load()
	if sess != nil && sess.Err() == nil && d.stopProducers.Load() {
		err = d.setDVSRunning(false)
	}

	if x := d.exchange.Load(); x != nil {
		if n := x.drain(); n > 0 {
			d.metrics.addContainersDropped(n)
			d.logger.Debug("edvs: discarded queued containers", "count", n)
		}
	}

	d.tsResetRequest.Store(false)
	if !d.opState.ToStopped() {
		d.opState.Set(StoppedState)
	}

	if sess != nil {
		d.logger.Info("edvs: acquisition stopped", "session", sess.ID(), "error", sess.Err())
	}

	return err
}

// acquisition is the state of one session's acquisition goroutine.
type acquisition struct {
	dev      *Device
	port     transport.Port
	session  *Session
	exchange *exchange
	pipe     *pipeline
	buf      []byte
	logger   logger.Logger
}

// step runs one iteration of the acquisition loop: apply a pending timestamp
// reset, read one chunk and push it through the pipeline.
func (a *acquisition) step(ctx context.Context) bool {
	d := a.dev
	if !d.running.Load() {
		return false
	}

	commit := func(c *event.Container) {
		a.exchange.put(ctx, c, d.blocking.Load())
	}

	if d.tsResetRequest.CompareAndSwap(true, false) {
		a.logger.Debug("edvs: applying host timestamp reset")
		a.pipe.resetTimestamps(commit)
	}

	size := int(d.readSize.Load())
	if cap(a.buf) < size {
		a.buf = make([]byte, size)
	}

	n, err := a.port.Read(a.buf[:size])
	if n > 0 {
		d.metrics.addBytesRead(n)
		a.pipe.feed(a.buf[:n], commit)
	}

	if err != nil {
		if !d.running.Load() || ctx.Err() != nil {
			return false
		}
		d.abort(a.session, fmt.Errorf("%w: read: %w", ErrTransport, err))

		return false
	}

	return true
}

// exit runs once when the acquisition goroutine terminates.
func (a *acquisition) exit() {
	a.logger.Debug("edvs: acquisition goroutine exited",
		"open_events", a.pipe.asm.eventCount(),
		"partial_frame_bytes", a.pipe.decoder.pending())
	a.pipe.discard()
	a.session.finish()
}
