// Package serialport opens, discovers and talks to line-oriented serial
// devices such as the UWB tag.
package serialport

import (
	"io"
	"time"
)

// SerialPorter defines the minimal interface needed for a serial port.
// This abstraction enables unit testing without real serial hardware.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutSerialPorter extends SerialPorter with timeout capabilities.
// This is an optional interface that serial ports may implement.
type TimeoutSerialPorter interface {
	SerialPorter
	// SetReadTimeout sets the read timeout for the serial port.
	SetReadTimeout(timeout time.Duration) error
}

// InputFlusher is implemented by ports that can drop unread input, such as
// go.bug.st/serial's Port.
type InputFlusher interface {
	ResetInputBuffer() error
}

// Opener is a function type for opening serial ports.
// This allows for easier testing by replacing the opener function.
type Opener func(path string, opts PortOptions) (SerialPorter, error)
