package pozyx

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/banshee-data/uwbpose/internal/monitoring"
	"github.com/banshee-data/uwbpose/internal/serialport"
)

// TagMatcher recognises the tag's USB virtual COM port.
var TagMatcher = serialport.USBMatcher{
	VID:     "0483",
	PID:     "5740",
	Product: []string{"STMicroelectronics Virtual COM Port", "Pozyx"},
}

// DefaultPositioningTimeout bounds the wait for a positioning interrupt.
const DefaultPositioningTimeout = 500 * time.Millisecond

// SerialSDK opens tags attached over USB serial.
type SerialSDK struct {
	// Port holds the serial parameters; zero values select 115200 8N1.
	Port serialport.PortOptions
	// ReplyTimeout bounds a single register command round trip.
	ReplyTimeout time.Duration
	// PositioningTimeout bounds the wait for a positioning fix.
	PositioningTimeout time.Duration
	// OpenPort opens the serial device; defaults to serialport.Open.
	OpenPort serialport.Opener
	// Logger defaults to the monitoring logger.
	Logger *zerolog.Logger
}

// DiscoverPort returns the first attached tag's port name.
func (s *SerialSDK) DiscoverPort() (string, error) {
	name, err := serialport.Discover(TagMatcher.Match)
	if errors.Is(err, serialport.ErrNoMatchingPort) {
		return "", ErrNoDevice
	}
	return name, err
}

// Open connects to the tag on port.
func (s *SerialSDK) Open(port string) (Conn, error) {
	open := s.OpenPort
	if open == nil {
		open = serialport.Open
	}
	p, err := open(port, s.Port)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}

	log := monitoring.Logger()
	if s.Logger != nil {
		log = *s.Logger
	}
	posTimeout := s.PositioningTimeout
	if posTimeout <= 0 {
		posTimeout = DefaultPositioningTimeout
	}

	return &serialConn{
		ex:         serialport.NewExchanger(p, s.ReplyTimeout),
		log:        log.With().Str("component", "pozyx").Str("port", port).Logger(),
		posTimeout: posTimeout,
		pollEvery:  5 * time.Millisecond,
	}, nil
}
