package pozyx

import (
	"math"
	"slices"
	"sync"
)

// Operation names recorded by Simulator.
const (
	OpClearDevices       = "clear_devices"
	OpAddDevice          = "add_device"
	OpSelectAnchors      = "select_anchors"
	OpSaveAnchors        = "save_anchors"
	OpRequestPosition    = "request_position"
	OpRequestOrientation = "request_orientation"
)

// Call is one recorded device command.
type Call struct {
	Op        string
	Device    DeviceCoordinates
	Selection AnchorSelection
	Count     int
	Dimension Dimension
	HeightMM  int
	Algorithm Algorithm
}

// Fix is one scripted positioning result.
type Fix struct {
	Position    Coordinates
	Orientation Quaternion
	Status      Status
}

// Simulator is an in-memory tag. It implements both SDK and Conn so a
// session can run without hardware. Unscripted commands succeed; without
// scripted fixes the tag walks a circle of CircleRadius millimetres.
type Simulator struct {
	// Port is returned by DiscoverPort; empty means no tag attached.
	Port string
	// OpenErr, when set, is returned by Open.
	OpenErr error
	// DiscoverErr, when set, is returned by DiscoverPort.
	DiscoverErr error
	// Fixes are replayed in order, the last one repeating.
	Fixes []Fix
	// CircleRadius and CircleStep shape the generated walk.
	CircleRadius float64
	CircleStep   float64

	mu       sync.Mutex
	statuses map[string][]Status
	calls    []Call
	devices  []DeviceCoordinates
	flash    []DeviceCoordinates
	selected int
	polls    int
	lastFix  Fix
	closed   bool
	opened   string
}

// NewSimulator returns a simulator reachable on port.
func NewSimulator(port string) *Simulator {
	return &Simulator{
		Port:         port,
		CircleRadius: 1000,
		CircleStep:   math.Pi / 36,
	}
}

// Script queues statuses for successive calls of op.
func (s *Simulator) Script(op string, statuses ...Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses == nil {
		s.statuses = make(map[string][]Status)
	}
	s.statuses[op] = append(s.statuses[op], statuses...)
}

func (s *Simulator) next(op string) Status {
	q := s.statuses[op]
	if len(q) == 0 {
		return StatusSuccess
	}
	s.statuses[op] = q[1:]
	return q[0]
}

// DiscoverPort implements SDK.
func (s *Simulator) DiscoverPort() (string, error) {
	if s.DiscoverErr != nil {
		return "", s.DiscoverErr
	}
	if s.Port == "" {
		return "", ErrNoDevice
	}
	return s.Port, nil
}

// Open implements SDK and returns the simulator itself.
func (s *Simulator) Open(port string) (Conn, error) {
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.mu.Lock()
	s.opened = port
	s.closed = false
	s.mu.Unlock()
	return s, nil
}

func (s *Simulator) ClearDevices() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpClearDevices})
	st := s.next(OpClearDevices)
	if st.OK() {
		s.devices = nil
	}
	return st
}

func (s *Simulator) AddDevice(dev DeviceCoordinates) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpAddDevice, Device: dev})
	st := s.next(OpAddDevice)
	if st.OK() {
		s.devices = append(s.devices, dev)
	}
	return st
}

func (s *Simulator) SelectAnchors(mode AnchorSelection, count int) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpSelectAnchors, Selection: mode, Count: count})
	st := s.next(OpSelectAnchors)
	if st.OK() {
		s.selected = count
	}
	return st
}

func (s *Simulator) SaveAnchors() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpSaveAnchors})
	st := s.next(OpSaveAnchors)
	if st.OK() {
		s.flash = slices.Clone(s.devices)
	}
	return st
}

func (s *Simulator) RequestPosition(dim Dimension, heightMM int, alg Algorithm) (Coordinates, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpRequestPosition, Dimension: dim, HeightMM: heightMM, Algorithm: alg})

	fix := s.fix(dim, heightMM)
	s.polls++
	s.lastFix = fix
	if st := s.next(OpRequestPosition); !st.OK() {
		return fix.Position, st
	}
	return fix.Position, fix.Status
}

func (s *Simulator) RequestOrientation() (Quaternion, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpRequestOrientation})
	return s.lastFix.Orientation, s.next(OpRequestOrientation)
}

func (s *Simulator) fix(dim Dimension, heightMM int) Fix {
	if len(s.Fixes) > 0 {
		i := min(s.polls, len(s.Fixes)-1)
		return s.Fixes[i]
	}
	theta := float64(s.polls) * s.CircleStep
	z := 0.0
	if dim == Dimension25D {
		z = float64(heightMM)
	}
	// heading is tangent to the circle
	yaw := theta + math.Pi/2
	return Fix{
		Position: Coordinates{
			X: math.Round(s.CircleRadius * math.Cos(theta)),
			Y: math.Round(s.CircleRadius * math.Sin(theta)),
			Z: z,
		},
		Orientation: Quaternion{Z: math.Sin(yaw / 2), W: math.Cos(yaw / 2)},
		Status:      StatusSuccess,
	}
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Calls returns every recorded command in order.
func (s *Simulator) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallsTo returns the recorded commands named op.
func (s *Simulator) CallsTo(op string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Devices returns the tag's current device list.
func (s *Simulator) Devices() []DeviceCoordinates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.devices)
}

// Flash returns the device list last saved to flash.
func (s *Simulator) Flash() []DeviceCoordinates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.flash)
}

// OpenedPort returns the port passed to the last Open.
func (s *Simulator) OpenedPort() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Closed reports whether Close was called since the last Open.
func (s *Simulator) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var (
	_ SDK  = (*Simulator)(nil)
	_ Conn = (*Simulator)(nil)
	_ SDK  = (*SerialSDK)(nil)
	_ Conn = (*serialConn)(nil)
)
