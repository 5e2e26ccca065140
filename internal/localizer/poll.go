package localizer

import (
	"fmt"

	"github.com/banshee-data/uwbpose/internal/pozyx"
)

// PoseSample is the result of one poll.
type PoseSample struct {
	Position    pozyx.Coordinates
	Orientation pozyx.Quaternion
}

func (p PoseSample) String() string {
	return fmt.Sprintf("x=%g y=%g z=%g q=(%g, %g, %g, %g)",
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.X, p.Orientation.Y, p.Orientation.Z, p.Orientation.W)
}

// Poll runs one positioning fix and reads the orientation. The status is
// the positioning status; the sample is returned whatever it is and then
// holds whatever the tag reported.
func (s *Session) Poll() (PoseSample, pozyx.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected {
		s.log.Error().Stringer("state", s.state).Msg("cannot poll")
		return PoseSample{}, pozyx.StatusFailure
	}

	pos, st := s.conn.RequestPosition(s.opts.Dimension, s.opts.HeightMM, s.opts.Algorithm)
	q, qst := s.conn.RequestOrientation()
	if !qst.OK() {
		s.log.Debug().Stringer("status", qst).Msg("reading orientation failed")
	}

	if s.opts.HeightAsZ && s.opts.Dimension != pozyx.Dimension3D {
		pos.Z = float64(s.opts.HeightMM)
	}

	if err := Classify(st); err != nil {
		s.log.Warn().Err(err).Msg("do positioning")
	}
	return PoseSample{Position: pos, Orientation: q}, st
}

// Classify maps a poll status to nil, ErrPositioningFailure or
// ErrPositioningTimeout. Statuses other than success and timeout count as
// failures.
func Classify(st pozyx.Status) error {
	switch st {
	case pozyx.StatusSuccess:
		return nil
	case pozyx.StatusTimeout:
		return ErrPositioningTimeout
	default:
		return ErrPositioningFailure
	}
}
