package edvs

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-edvs/event"
	"github.com/arloliu/go-edvs/logger"
	"github.com/arloliu/go-edvs/transport"
)

const (
	testBaudRate    = 4000000
	testReadTimeout = 5 * time.Millisecond
	waitTimeout     = 2 * time.Second
	waitTick        = 2 * time.Millisecond
)

// polarityBytes encodes one polarity frame.
func polarityBytes(x, y uint8, on bool, ts uint16) []byte {
	b1 := x & coordMask
	if on {
		b1 |= polarityFlag
	}

	return []byte{polarityFlag | y&coordMask, b1, byte(ts >> 8), byte(ts)}
}

// resetBytes encodes one timestamp reset frame.
func resetBytes() []byte {
	return []byte{specialHeader, specialCodeTimestampReset, 0, 0}
}

// rowStream encodes count ON events at x=0..count-1, y=0 with timestamps
// start, start+step, ...
func rowStream(count int, start, step uint16) []byte {
	out := make([]byte, 0, count*frameSize)
	for i := 0; i < count; i++ {
		out = append(out, polarityBytes(uint8(i), 0, true, start+uint16(i)*step)...) //nolint:gosec
	}

	return out
}

func quietLogger() logger.Logger {
	return logger.NewSlogWithWriter(io.Discard, logger.ErrorLevel, false)
}

// openTestDevice opens a Device on an in-memory port. The device is stopped
// and closed when the test ends.
func openTestDevice(t *testing.T, opts ...Option) (*Device, *transport.TestablePort) {
	t.Helper()

	port := transport.NewTestablePort()
	defaults := []Option{
		WithPortOpener(port.Opener()),
		WithReadTimeout(testReadTimeout),
		WithLogger(quietLogger()),
	}

	dev, err := Open(1, "/dev/ttyTEST-"+t.Name(), testBaudRate, append(defaults, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = dev.DataStop()
		_ = dev.Close()
	})

	return dev, port
}

// mustSet applies ConfigSet, failing the test on error.
func mustSet(t *testing.T, dev *Device, module int16, param uint8, value uint32) {
	t.Helper()
	require.NoError(t, dev.ConfigSet(module, param, value))
}

// waitContainer polls DataGet until a container arrives.
func waitContainer(t *testing.T, dev *Device) *event.Container {
	t.Helper()

	var c *event.Container
	require.Eventually(t, func() bool {
		c = dev.DataGet()
		return c != nil
	}, waitTimeout, waitTick)

	return c
}

// polarityEvents returns the polarity events of c, or nil.
func polarityEvents(c *event.Container) []event.Polarity {
	if p := c.PolarityPacket(); p != nil {
		return p.Events()
	}

	return nil
}

// specialEvents returns the special events of c, or nil.
func specialEvents(c *event.Container) []event.Special {
	if p := c.SpecialPacket(); p != nil {
		return p.Events()
	}

	return nil
}
