// Package transport abstracts the serial port an eDVS sensor is attached to.
//
// The driver only needs byte-level Read/Write/Close plus a read timeout, so
// the real go.bug.st/serial port and the in-memory TestablePort are
// interchangeable.
package transport

import (
	"errors"
	"io"
	"time"

	"go.bug.st/serial"
)

// ErrPortClosed is returned by operations on a closed port.
var ErrPortClosed = errors.New("transport: port closed")

// Port defines the minimal interface needed for a serial port.
type Port interface {
	io.ReadWriteCloser
	// SetReadTimeout bounds how long Read waits for data. A Read that times
	// out returns 0 bytes and a nil error.
	SetReadTimeout(timeout time.Duration) error
}

// Opener opens the named port with the given options.
// It allows injecting fake ports in tests.
type Opener func(name string, opts PortOptions) (Port, error)

// OpenSerial opens a real serial port through go.bug.st/serial.
func OpenSerial(name string, opts PortOptions) (Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}

	return port, nil
}

var _ Opener = OpenSerial
