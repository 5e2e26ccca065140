// Package localizer drives one UWB tag: it connects, pushes the anchor layout
// and polls the tag for poses.
package localizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/banshee-data/uwbpose/internal/anchors"
	"github.com/banshee-data/uwbpose/internal/monitoring"
	"github.com/banshee-data/uwbpose/internal/pozyx"
)

// autoSelectThreshold is the anchor count above which the tag is told to
// pick its own subset.
const autoSelectThreshold = 4

// Options configures a Session.
type Options struct {
	Algorithm pozyx.Algorithm
	Dimension pozyx.Dimension
	// HeightMM is the tag's fixed height, sent with 2.5D positioning.
	HeightMM int
	// HeightAsZ reports HeightMM as the z coordinate when not solving in 3D.
	HeightAsZ bool

	// Metrics may be nil.
	Metrics *monitoring.Collector
	// Logger defaults to the monitoring logger.
	Logger *zerolog.Logger
}

// DefaultOptions polls in 2D with the UWB only algorithm at 1000 mm.
func DefaultOptions() Options {
	return Options{
		Algorithm: pozyx.AlgorithmUWBOnly,
		Dimension: pozyx.Dimension2D,
		HeightMM:  1000,
	}
}

// State is the lifecycle of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "disconnected"
	}
}

// Session owns the connection to one tag. Its methods are safe for
// concurrent use but device commands run one at a time.
type Session struct {
	mu    sync.Mutex
	conn  pozyx.Conn
	port  string
	state State
	opts  Options
	log   zerolog.Logger
}

// Connect opens the tag on portHint, or on the first discovered tag when
// portHint is empty.
func Connect(sdk pozyx.SDK, portHint string, opts Options) (*Session, error) {
	log := monitoring.Logger()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	if opts.Dimension == 0 {
		opts.Dimension = pozyx.Dimension2D
	}

	port := portHint
	if port == "" {
		found, err := sdk.DiscoverPort()
		if err != nil {
			if errors.Is(err, pozyx.ErrNoDevice) {
				log.Error().Msg("no tag connected, check the USB cable")
				return nil, ErrNoDeviceFound
			}
			log.Error().Err(err).Msg("serial port discovery failed")
			return nil, &ConnectionError{Err: fmt.Errorf("discover tag: %w", err)}
		}
		port = found
		log.Info().Str("port", port).Msg("auto assigning serial port")
	}

	conn, err := sdk.Open(port)
	if err != nil {
		return nil, &ConnectionError{Port: port, Err: err}
	}

	return &Session{
		conn:  conn,
		port:  port,
		state: StateConnected,
		opts:  opts,
		log:   log.With().Str("port", port).Logger(),
	}, nil
}

// Port returns the serial port the session is bound to.
func (s *Session) Port() string { return s.port }

// Options returns the options the session was created with.
func (s *Session) Options() Options { return s.opts }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ProvisionAnchors replaces the tag's device list with list and reports
// whether every step succeeded. Every anchor is attempted even after a
// failure. With more than four anchors the tag selects the best subset
// itself. When persist is set the list is also saved to flash.
func (s *Session) ProvisionAnchors(list []anchors.Anchor, persist bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		s.log.Error().Stringer("state", s.state).Msg("cannot provision anchors")
		s.opts.Metrics.ObserveProvision(false, 0)
		return false
	}

	ok := s.conn.ClearDevices().OK()
	if !ok {
		s.log.Warn().Msg("clearing device list failed")
	}

	for _, a := range list {
		if st := s.conn.AddDevice(deviceCoordinates(a)); !st.OK() {
			s.log.Warn().Str("anchor", fmt.Sprintf("0x%04x", a.ID)).Stringer("status", st).Msg("adding anchor failed")
			ok = false
		}
	}

	if len(list) > autoSelectThreshold {
		count := len(list)
		if count > pozyx.MaxSelectedAnchors {
			s.log.Warn().Int("anchors", count).Int("max", pozyx.MaxSelectedAnchors).Msg("more anchors configured than the tag can select from")
			count = pozyx.MaxSelectedAnchors
		}
		if st := s.conn.SelectAnchors(pozyx.AnchorSelectionAuto, count); !st.OK() {
			s.log.Warn().Int("count", count).Stringer("status", st).Msg("anchor selection failed")
			ok = false
		}
	}

	if persist {
		// saving is best effort and does not affect the result
		if st := s.conn.SaveAnchors(); !st.OK() {
			s.log.Warn().Stringer("status", st).Msg("saving anchors to flash failed")
		}
	}

	s.log.Info().Int("anchors", len(list)).Bool("ok", ok).Msg("anchor configuration")
	s.opts.Metrics.ObserveProvision(ok, len(list))
	return ok
}

// Close releases the serial connection. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		s.state = StateClosed
		return nil
	}
	s.state = StateClosed
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.port, err)
	}
	return nil
}

func deviceCoordinates(a anchors.Anchor) pozyx.DeviceCoordinates {
	return pozyx.DeviceCoordinates{
		NetworkID: uint16(a.ID),
		Flag:      uint8(a.Flag),
		Pos:       pozyx.Coordinates{X: a.X, Y: a.Y, Z: a.Z},
	}
}

// Open loads the anchor file, connects and provisions in one step. The
// returned bool is the provisioning result; a failed provisioning still
// returns a usable session.
func Open(ctx context.Context, anchorsPath, portHint string, sdk pozyx.SDK, opts Options, persist bool) (*Session, bool, error) {
	list, err := anchors.Load(anchorsPath)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s, err := Connect(sdk, portHint, opts)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		_ = s.Close()
		return nil, false, err
	}
	return s, s.ProvisionAnchors(list, persist), nil
}
