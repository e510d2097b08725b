package transport

import (
	"sync"
	"time"
)

// TestablePort is an in-memory Port for tests.
//
// Reads block until data is added, the read timeout expires or the port is
// closed, mirroring a real serial port configured with SetReadTimeout.
type TestablePort struct {
	mu          sync.Mutex
	readData    []byte
	writtenData []byte
	readErr     error
	writeErr    error
	closeErr    error
	closed      bool
	readTimeout time.Duration
	notify      chan struct{}
	closedCh    chan struct{}
	readCalls   int
}

var _ Port = (*TestablePort)(nil)

// NewTestablePort creates a fake port pre-loaded with data.
func NewTestablePort(data ...byte) *TestablePort {
	return &TestablePort{
		readData:    append([]byte(nil), data...),
		readTimeout: -1,
		notify:      make(chan struct{}, 1),
		closedCh:    make(chan struct{}),
	}
}

// Opener returns an Opener that always hands out this port.
func (p *TestablePort) Opener() Opener {
	return func(string, PortOptions) (Port, error) {
		return p, nil
	}
}

// Read implements io.Reader.
func (p *TestablePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	p.readCalls++
	timeout := p.readTimeout
	p.mu.Unlock()

	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return 0, ErrPortClosed
		}
		if p.readErr != nil {
			err := p.readErr
			p.mu.Unlock()
			return 0, err
		}
		if len(p.readData) > 0 {
			n := copy(b, p.readData)
			p.readData = p.readData[n:]
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		select {
		case <-p.notify:
		case <-p.closedCh:
		case <-deadline:
			return 0, nil
		}
	}
}

// Write implements io.Writer and records the written bytes.
func (p *TestablePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writtenData = append(p.writtenData, b...)

	return len(b), nil
}

// Close marks the port closed and wakes blocked readers.
func (p *TestablePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.closedCh)
	}
	err := p.closeErr

	return err
}

// SetReadTimeout implements Port. A negative timeout blocks reads indefinitely.
func (p *TestablePort) SetReadTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = timeout

	return nil
}

// AddReadData appends data that subsequent reads will return.
func (p *TestablePort) AddReadData(data ...byte) {
	p.mu.Lock()
	p.readData = append(p.readData, data...)
	p.mu.Unlock()
	p.wake()
}

// SetReadError makes subsequent reads fail with err.
func (p *TestablePort) SetReadError(err error) {
	p.mu.Lock()
	p.readErr = err
	p.mu.Unlock()
	p.wake()
}

// SetWriteError makes subsequent writes fail with err.
func (p *TestablePort) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// SetCloseError sets the error returned by Close.
func (p *TestablePort) SetCloseError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeErr = err
}

// WrittenData returns a copy of everything written so far.
func (p *TestablePort) WrittenData() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]byte(nil), p.writtenData...)
}

// ResetWrittenData clears the write capture.
func (p *TestablePort) ResetWrittenData() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writtenData = nil
}

// Pending returns the number of unread bytes.
func (p *TestablePort) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.readData)
}

// IsClosed reports whether Close was called.
func (p *TestablePort) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closed
}

// ReadCalls returns how many times Read was called.
func (p *TestablePort) ReadCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.readCalls
}

func (p *TestablePort) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}
