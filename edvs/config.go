package edvs

import (
	"fmt"

	"github.com/arloliu/go-edvs/logger"
)

// Module addresses. Negative modules are host-side parameters, non-negative
// modules are forwarded to the sensor.
const (
	HostConfigSerial       int16 = -2
	HostConfigDataExchange int16 = -3
	HostConfigPackets      int16 = -4
	HostConfigLog          int16 = -5

	ConfigDVS  int16 = 0
	ConfigBias int16 = 1
)

// HostConfigSerial parameters.
const (
	// SerialReadSize is the maximum number of bytes per serial read. It takes
	// effect on the next read.
	SerialReadSize uint8 = 0
)

// HostConfigDataExchange parameters.
const (
	// DataExchangeBufferSize is the exchange buffer capacity in containers,
	// applied at the next DataStart.
	DataExchangeBufferSize uint8 = 0
	// DataExchangeBlocking selects backpressure (1) or drop-oldest (0) when
	// the exchange buffer is full.
	DataExchangeBlocking uint8 = 1
	// DataExchangeStartProducers makes DataStart switch the sensor output on.
	// Setting it to 1 during acquisition resumes the sensor output immediately.
	DataExchangeStartProducers uint8 = 2
	// DataExchangeStopProducers makes DataStop switch the sensor output off.
	// Setting it to 1 during acquisition pauses the sensor output immediately.
	DataExchangeStopProducers uint8 = 3
)

// HostConfigPackets parameters, applied at the next DataStart.
const (
	// PacketsMaxContainerPacketSize is the number of events after which a
	// container is committed, 0 disables the check.
	PacketsMaxContainerPacketSize uint8 = 0
	// PacketsMaxContainerInterval is the time span in microseconds after which
	// a container is committed, 0 disables the check.
	PacketsMaxContainerInterval uint8 = 1
)

// HostConfigLog parameters.
const (
	// LogLevel is the device log level, 0 (emergency) to 7 (debug).
	LogLevel uint8 = 0
)

// ConfigDVS parameters.
const (
	// DVSRun switches the sensor event output on (1) or off (0).
	DVSRun uint8 = 0
	// DVSTimestampReset resets the sensor timestamp when set to 1. ConfigGet
	// reports whether a reset was applied in the current session.
	DVSTimestampReset uint8 = 1
)

// Host parameter defaults and limits.
const (
	DefaultReadSize = 1024
	MinReadSize     = 1
	MaxReadSize     = 1 << 20

	DefaultBufferSize = 64
	MinBufferSize     = 1
	MaxBufferSize     = 1 << 16

	DefaultMaxContainerPacketSize = 8192
	DefaultMaxContainerInterval   = 10000

	DefaultLogLevel = 5
	MaxLogLevel     = 7
)

// Sensor commands.
const (
	cmdEventFormat     = "!E2"
	cmdDVSRunOn        = "E+"
	cmdDVSRunOff       = "E-"
	cmdTimestampReset  = "!ET"
	cmdBiasFlush       = "!BF"
	cmdBiasSetTemplate = "!B%d=%d"
)

// ConfigSet sets a host or device parameter.
//
// Unknown addresses fail with ErrUnknownConfigAddress, out-of-range values
// with ErrInvalidConfigValue; no state is changed on failure.
func (d *Device) ConfigSet(module int16, param uint8, value uint32) error {
	if d.closed.Load() {
		return ErrDeviceClosed
	}

	var err error
	switch module {
	case HostConfigSerial:
		err = d.setSerial(param, value)
	case HostConfigDataExchange:
		err = d.setDataExchange(param, value)
	case HostConfigPackets:
		err = d.setPackets(param, value)
	case HostConfigLog:
		err = d.setLog(param, value)
	case ConfigDVS:
		err = d.setDVS(param, value)
	case ConfigBias:
		err = d.setBias(param, value)
	default:
		err = fmt.Errorf("%w: module %d", ErrUnknownConfigAddress, module)
	}

	if err != nil {
		d.logger.Debug("edvs: config set failed", "module", module, "param", param, "value", value, "error", err)
		return err
	}
	d.logger.Debug("edvs: config set", "module", module, "param", param, "value", value)

	return nil
}

// ConfigGet returns a host or device parameter. Biases that were never set read as 0.
func (d *Device) ConfigGet(module int16, param uint8) (uint32, error) {
	if d.closed.Load() {
		return 0, ErrDeviceClosed
	}

	switch module {
	case HostConfigSerial:
		if param == SerialReadSize {
			return d.readSize.Load(), nil
		}
	case HostConfigDataExchange:
		switch param {
		case DataExchangeBufferSize:
			return d.bufferSize.Load(), nil
		case DataExchangeBlocking:
			return boolToUint(d.blocking.Load()), nil
		case DataExchangeStartProducers:
			return boolToUint(d.startProducers.Load()), nil
		case DataExchangeStopProducers:
			return boolToUint(d.stopProducers.Load()), nil
		}
	case HostConfigPackets:
		switch param {
		case PacketsMaxContainerPacketSize:
			return d.maxPacketSize.Load(), nil
		case PacketsMaxContainerInterval:
			return d.maxInterval.Load(), nil
		}
	case HostConfigLog:
		if param == LogLevel {
			return d.logLevel.Load(), nil
		}
	case ConfigDVS:
		switch param {
		case DVSRun:
			return boolToUint(d.dvsRunning.Load()), nil
		case DVSTimestampReset:
			return boolToUint(d.dvsTSReset.Load()), nil
		}
	case ConfigBias:
		id, err := ParseBiasID(param)
		if err != nil {
			return 0, err
		}

		return d.biases.get(id), nil
	}

	return 0, fmt.Errorf("%w: module %d param %d", ErrUnknownConfigAddress, module, param)
}

// SendDefaultConfig restores the default host parameters and writes the
// default value of every bias to the sensor. The log level is left unchanged.
func (d *Device) SendDefaultConfig() error {
	if d.closed.Load() {
		return ErrDeviceClosed
	}

	d.setHostDefaults()

	for id := BiasID(0); id < BiasCount; id++ {
		if err := d.setBias(uint8(id), defaultBiases[id]); err != nil {
			return err
		}
	}
	d.logger.Info("edvs: default configuration sent")

	return nil
}

func (d *Device) setHostDefaults() {
	d.readSize.Store(DefaultReadSize)
	d.bufferSize.Store(DefaultBufferSize)
	d.blocking.Store(false)
	d.startProducers.Store(true)
	d.stopProducers.Store(true)
	d.maxPacketSize.Store(DefaultMaxContainerPacketSize)
	d.maxInterval.Store(DefaultMaxContainerInterval)
}

func (d *Device) setSerial(param uint8, value uint32) error {
	if param != SerialReadSize {
		return fmt.Errorf("%w: serial param %d", ErrUnknownConfigAddress, param)
	}
	if value < MinReadSize || value > MaxReadSize {
		return fmt.Errorf("%w: read size %d", ErrInvalidConfigValue, value)
	}
	d.readSize.Store(value)

	return nil
}

func (d *Device) setDataExchange(param uint8, value uint32) error {
	switch param {
	case DataExchangeBufferSize:
		if value < MinBufferSize || value > MaxBufferSize {
			return fmt.Errorf("%w: buffer size %d", ErrInvalidConfigValue, value)
		}
		d.bufferSize.Store(value)

	case DataExchangeBlocking:
		on, err := parseBool(value)
		if err != nil {
			return err
		}
		d.blocking.Store(on)

	case DataExchangeStartProducers:
		on, err := parseBool(value)
		if err != nil {
			return err
		}
		if on && d.isAcquiring() {
			if err := d.setDVSRunning(true); err != nil {
				return err
			}
		}
		d.startProducers.Store(on)

	case DataExchangeStopProducers:
		on, err := parseBool(value)
		if err != nil {
			return err
		}
		if on && d.isAcquiring() {
			if err := d.setDVSRunning(false); err != nil {
				return err
			}
		}
		d.stopProducers.Store(on)

	default:
		return fmt.Errorf("%w: data exchange param %d", ErrUnknownConfigAddress, param)
	}

	return nil
}

func (d *Device) setPackets(param uint8, value uint32) error {
	switch param {
	case PacketsMaxContainerPacketSize:
		d.maxPacketSize.Store(value)
	case PacketsMaxContainerInterval:
		d.maxInterval.Store(value)
	default:
		return fmt.Errorf("%w: packets param %d", ErrUnknownConfigAddress, param)
	}

	return nil
}

func (d *Device) setLog(param uint8, value uint32) error {
	if param != LogLevel {
		return fmt.Errorf("%w: log param %d", ErrUnknownConfigAddress, param)
	}
	if value > MaxLogLevel {
		return fmt.Errorf("%w: log level %d", ErrInvalidConfigValue, value)
	}
	d.logLevel.Store(value)
	d.logger.SetLevel(toLoggerLevel(value))

	return nil
}

func (d *Device) setDVS(param uint8, value uint32) error {
	switch param {
	case DVSRun:
		on, err := parseBool(value)
		if err != nil {
			return err
		}

		return d.setDVSRunning(on)

	case DVSTimestampReset:
		on, err := parseBool(value)
		if err != nil {
			return err
		}
		if !on {
			d.dvsTSReset.Store(false)
			return nil
		}
		if err := d.sendCommands(cmdTimestampReset); err != nil {
			return err
		}
		// the acquisition goroutine applies the reset before its next read
		if d.isAcquiring() {
			d.tsResetRequest.Store(true)
		}

		return nil

	default:
		return fmt.Errorf("%w: dvs param %d", ErrUnknownConfigAddress, param)
	}
}

func (d *Device) setDVSRunning(on bool) error {
	cmd := cmdDVSRunOff
	if on {
		cmd = cmdDVSRunOn
	}
	if err := d.sendCommands(cmd); err != nil {
		return err
	}
	d.dvsRunning.Store(on)

	return nil
}

func (d *Device) setBias(param uint8, value uint32) error {
	id, err := ParseBiasID(param)
	if err != nil {
		return err
	}
	if value > MaxBiasValue {
		return fmt.Errorf("%w: bias %s value %d exceeds 24 bits", ErrInvalidConfigValue, id, value)
	}

	if err := d.sendCommands(fmt.Sprintf(cmdBiasSetTemplate, uint8(id), value), cmdBiasFlush); err != nil {
		return err
	}
	d.biases.set(id, value)

	return nil
}

// sendCommands writes newline-terminated commands to the sensor as one
// uninterrupted sequence.
//
// A write failure while acquiring aborts the session.
func (d *Device) sendCommands(cmds ...string) error {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	for _, cmd := range cmds {
		line := make([]byte, 0, len(cmd)+1)
		line = append(line, cmd...)
		line = append(line, '\n')

		if _, err := d.port.Write(line); err != nil {
			err = fmt.Errorf("%w: write %q: %w", ErrTransport, cmd, err)
			if sess := d.session.Load(); sess != nil && d.isAcquiring() {
				d.abort(sess, err)
			}

			return err
		}
	}

	return nil
}

func parseBool(value uint32) (bool, error) {
	switch value {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: boolean parameter got %d", ErrInvalidConfigValue, value)
	}
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}

// toLoggerLevel maps the eight syslog-style levels onto logger levels.
func toLoggerLevel(level uint32) logger.LogLevel {
	switch {
	case level <= 3:
		return logger.ErrorLevel
	case level == 4:
		return logger.WarnLevel
	case level <= 6:
		return logger.InfoLevel
	default:
		return logger.DebugLevel
	}
}
