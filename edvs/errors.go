package edvs

import "errors"

var (
	// ErrPortInUse indicates that another Device already owns the serial port.
	ErrPortInUse = errors.New("edvs: serial port already in use")

	// ErrDeviceClosed indicates that the Device was closed.
	ErrDeviceClosed = errors.New("edvs: device closed")

	// ErrAcquisitionRunning indicates that the operation requires a stopped acquisition.
	ErrAcquisitionRunning = errors.New("edvs: acquisition running, call DataStop first")

	// ErrTransport indicates a failure of the underlying serial port.
	ErrTransport = errors.New("edvs: transport failure")
)

var (
	// ErrUnknownConfigAddress indicates an unknown module/parameter pair.
	ErrUnknownConfigAddress = errors.New("edvs: unknown config address")

	// ErrInvalidConfigValue indicates a value outside the parameter's range.
	ErrInvalidConfigValue = errors.New("edvs: config value out of range")
)
