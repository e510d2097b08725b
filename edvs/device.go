package edvs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-edvs/event"
	"github.com/arloliu/go-edvs/internal/task"
	"github.com/arloliu/go-edvs/logger"
	"github.com/arloliu/go-edvs/transport"
)

// Sensor identity.
const (
	DeviceName = "eDVS4337"

	SensorWidth  = 128
	SensorHeight = 128
)

// openPorts maps every open port name to its Device.
var openPorts = xsync.NewMapOf[string, *Device]()

// Info describes an open device.
type Info struct {
	DeviceID     uint16
	DeviceString string
	PortName     string
	BaudRate     uint32
	SizeX        int16
	SizeY        int16
	DeviceName   string
}

// Device is an open eDVS4337 sensor.
//
// All methods are safe for concurrent use. DataStart, DataStop and Close are
// serialised; ConfigSet, ConfigGet and DataGet may be called at any time.
type Device struct {
	id       uint16
	portName string
	baudRate uint32
	cfg      *deviceConfig
	port     transport.Port
	logger   logger.Logger
	metrics  Metrics

	lifecycleMu sync.Mutex
	cmdMu       sync.Mutex
	opState     AtomicOpState
	closed      atomic.Bool
	// running is the run flag of the acquisition goroutine.
	running atomic.Bool

	taskMgr  *task.Manager
	session  atomic.Pointer[Session]
	exchange atomic.Pointer[exchange]

	// host parameters
	readSize       atomic.Uint32
	bufferSize     atomic.Uint32
	blocking       atomic.Bool
	startProducers atomic.Bool
	stopProducers  atomic.Bool
	maxPacketSize  atomic.Uint32
	maxInterval    atomic.Uint32
	logLevel       atomic.Uint32

	// device state
	dvsRunning     atomic.Bool
	dvsTSReset     atomic.Bool
	tsResetRequest atomic.Bool
	biases         biasCache
}

// Open opens the sensor on the named serial port.
//
// Only one Device may own a port at a time; a second Open of the same port
// fails with ErrPortInUse until the first Device is closed.
func Open(deviceID uint16, portName string, baudRate uint32, opts ...Option) (*Device, error) {
	if portName == "" {
		return nil, errors.New("edvs: port name must not be empty")
	}

	cfg, err := newDeviceConfig(opts...)
	if err != nil {
		return nil, err
	}

	d := &Device{
		id:       deviceID,
		portName: portName,
		baudRate: baudRate,
		cfg:      cfg,
		logger:   cfg.logger.With("device", deviceID, "port", portName),
	}

	if _, loaded := openPorts.LoadOrStore(portName, d); loaded {
		return nil, fmt.Errorf("%w: %s", ErrPortInUse, portName)
	}

	portOpts := cfg.portOptions
	portOpts.BaudRate = int(baudRate)

	port, err := cfg.opener(portName, portOpts)
	if err != nil {
		openPorts.Delete(portName)
		return nil, fmt.Errorf("edvs: failed to open %s at %d baud: %w", portName, baudRate, err)
	}

	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		_ = port.Close()
		openPorts.Delete(portName)

		return nil, fmt.Errorf("edvs: failed to set read timeout on %s: %w", portName, err)
	}

	d.port = port
	d.taskMgr = task.NewManager(context.Background(), d.logger)
	d.opState.Set(StoppedState)
	d.setHostDefaults()
	d.logLevel.Store(cfg.logLevel)
	if cfg.logLevelSet {
		d.logger.SetLevel(toLoggerLevel(cfg.logLevel))
	}

	d.logger.Info("edvs: device opened", "baud_rate", baudRate)

	return d, nil
}

// Close releases the serial port. It fails with ErrAcquisitionRunning while
// acquisition is running; a session that already terminated on its own is
// reaped first. Closing a closed device is a no-op.
func (d *Device) Close() error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if d.closed.Load() {
		return nil
	}

	if !d.opState.IsStopped() {
		if sess := d.session.Load(); sess != nil && !sess.IsDone() {
			return ErrAcquisitionRunning
		}
		_ = d.stopLocked()
	}

	d.closed.Store(true)
	err := d.port.Close()

	openPorts.Compute(d.portName, func(cur *Device, loaded bool) (*Device, bool) {
		return cur, !loaded || cur == d
	})

	if err != nil {
		d.logger.Warn("edvs: failed to close serial port", "error", err)
		return fmt.Errorf("%w: close: %w", ErrTransport, err)
	}
	d.logger.Info("edvs: device closed")

	return nil
}

// Info returns the identity of the device.
func (d *Device) Info() Info {
	return Info{
		DeviceID:     d.id,
		DeviceString: fmt.Sprintf("%s ID-%d SerialPort-%s BaudRate-%d", DeviceName, d.id, d.portName, d.baudRate),
		PortName:     d.portName,
		BaudRate:     d.baudRate,
		SizeX:        SensorWidth,
		SizeY:        SensorHeight,
		DeviceName:   DeviceName,
	}
}

// Metrics returns the counters of the device.
func (d *Device) Metrics() *Metrics {
	return &d.metrics
}

// GetLogger returns the logger of the device.
func (d *Device) GetLogger() logger.Logger {
	return d.logger
}

// State returns the acquisition lifecycle state.
func (d *Device) State() OpState {
	return d.opState.Get()
}

// DataGet returns the oldest sealed container, or nil if none is available.
// It never blocks.
func (d *Device) DataGet() *event.Container {
	x := d.exchange.Load()
	if x == nil {
		return nil
	}

	return x.get()
}

// isAcquiring reports whether the acquisition goroutine is meant to be running.
func (d *Device) isAcquiring() bool {
	return d.running.Load()
}

// abort terminates the session after a transport failure. The acquisition
// goroutine observes the cleared run flag and exits; the next DataStart or
// DataStop reaps it.
func (d *Device) abort(sess *Session, err error) {
	if !d.running.CompareAndSwap(true, false) {
		return
	}
	sess.fail(err)
	d.logger.Error("edvs: acquisition aborted", "session", sess.ID(), "error", err)
}

func (d *Device) observeTimestampReset() {
	d.dvsTSReset.Store(true)
}
