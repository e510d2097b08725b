package edvs

import (
	"errors"
	"time"

	"github.com/arloliu/go-edvs/logger"
	"github.com/arloliu/go-edvs/transport"
)

const (
	// DefaultReadTimeout bounds a single serial read so the acquisition loop
	// observes DataStop promptly.
	DefaultReadTimeout = 50 * time.Millisecond

	// DefaultNotifyBufferSize is the capacity of a session's notification channel.
	DefaultNotifyBufferSize = 256

	MinReadTimeout = time.Millisecond
	MaxReadTimeout = time.Second
)

// deviceConfig holds the settings applied by Open.
type deviceConfig struct {
	logger      logger.Logger
	logLevel    uint32
	logLevelSet bool

	opener      transport.Opener
	portOptions transport.PortOptions
	readTimeout time.Duration

	notifyBufferSize int
}

func newDeviceConfig(opts ...Option) (*deviceConfig, error) {
	cfg := &deviceConfig{
		logLevel:         DefaultLogLevel,
		opener:           transport.OpenSerial,
		portOptions:      transport.DefaultPortOptions(transport.DefaultBaudRate),
		readTimeout:      DefaultReadTimeout,
		notifyBufferSize: DefaultNotifyBufferSize,
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.logger == nil {
		cfg.logger = logger.NewSlog(toLoggerLevel(cfg.logLevel), false)
	}

	return cfg, nil
}

// Option is a functional option for Open.
type Option interface {
	apply(*deviceConfig) error
}

type optFunc func(*deviceConfig) error

func (f optFunc) apply(cfg *deviceConfig) error { return f(cfg) }

// WithLogger sets the logger of the device. The device changes the logger's
// level when HostConfigLog is configured.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *deviceConfig) error {
		if l == nil {
			return errors.New("edvs: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithLogLevel sets the initial log level, 0 (emergency) to 7 (debug).
func WithLogLevel(level uint32) Option {
	return optFunc(func(cfg *deviceConfig) error {
		if level > MaxLogLevel {
			return errors.New("edvs: log level must be between 0 and 7")
		}
		cfg.logLevel = level
		cfg.logLevelSet = true

		return nil
	})
}

// WithPortOpener replaces the function used to open the serial port.
func WithPortOpener(opener transport.Opener) Option {
	return optFunc(func(cfg *deviceConfig) error {
		if opener == nil {
			return errors.New("edvs: port opener must not be nil")
		}
		cfg.opener = opener

		return nil
	})
}

// WithPortOptions sets the serial framing. The baud rate passed to Open takes precedence.
func WithPortOptions(opts transport.PortOptions) Option {
	return optFunc(func(cfg *deviceConfig) error {
		if _, err := opts.Normalize(); err != nil {
			return err
		}
		cfg.portOptions = opts

		return nil
	})
}

// WithReadTimeout sets the serial read timeout of the acquisition loop.
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *deviceConfig) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return errors.New("edvs: read timeout must be between 1ms and 1s")
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithNotifyBufferSize sets the capacity of a session's notification channel.
func WithNotifyBufferSize(size int) Option {
	return optFunc(func(cfg *deviceConfig) error {
		if size < 1 {
			return errors.New("edvs: notify buffer size must be positive")
		}
		cfg.notifyBufferSize = size

		return nil
	})
}
