package localizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/uwbpose/internal/pozyx"
)

func TestPoll_Success(t *testing.T) {
	sim := pozyx.NewSimulator("sim")
	sim.Fixes = []pozyx.Fix{{
		Position:    pozyx.Coordinates{X: 1200, Y: -340, Z: 0},
		Orientation: pozyx.Quaternion{X: 0, Y: 0, Z: 0.7071, W: 0.7071},
		Status:      pozyx.StatusSuccess,
	}}
	s := connect(t, sim)

	sample, st := s.Poll()
	assert.Equal(t, pozyx.StatusSuccess, st)
	assert.NoError(t, Classify(st))
	assert.Equal(t, pozyx.Coordinates{X: 1200, Y: -340}, sample.Position)
	assert.Equal(t, pozyx.Quaternion{Z: 0.7071, W: 0.7071}, sample.Orientation)

	pos := sim.CallsTo(pozyx.OpRequestPosition)
	require.Len(t, pos, 1)
	assert.Equal(t, pozyx.Dimension2D, pos[0].Dimension)
	assert.Equal(t, pozyx.AlgorithmUWBOnly, pos[0].Algorithm)
	assert.Equal(t, 1000, pos[0].HeightMM)
	assert.Len(t, sim.CallsTo(pozyx.OpRequestOrientation), 1)
}

func TestPoll_NonSuccessStillReturnsSample(t *testing.T) {
	for _, tc := range []struct {
		status pozyx.Status
		want   error
	}{
		{pozyx.StatusFailure, ErrPositioningFailure},
		{pozyx.StatusTimeout, ErrPositioningTimeout},
	} {
		sim := pozyx.NewSimulator("sim")
		sim.Fixes = []pozyx.Fix{{
			Position:    pozyx.Coordinates{X: 5, Y: 6, Z: 7},
			Orientation: pozyx.Quaternion{W: 1},
			Status:      tc.status,
		}}
		s := connect(t, sim)

		sample, st := s.Poll()
		assert.Equal(t, tc.status, st)
		assert.ErrorIs(t, Classify(st), tc.want)
		assert.Equal(t, pozyx.Coordinates{X: 5, Y: 6, Z: 7}, sample.Position)
		assert.Len(t, sim.CallsTo(pozyx.OpRequestOrientation), 1, "orientation is read even after a failed fix")
	}
}

func TestPoll_ScriptedTimeout(t *testing.T) {
	sim := pozyx.NewSimulator("sim")
	sim.Script(pozyx.OpRequestPosition, pozyx.StatusTimeout)
	s := connect(t, sim)

	_, st := s.Poll()
	assert.Equal(t, pozyx.StatusTimeout, st)
	_, st = s.Poll()
	assert.Equal(t, pozyx.StatusSuccess, st)
}

func TestPoll_UsesSessionOptions(t *testing.T) {
	sim := pozyx.NewSimulator("sim")
	opts := testOptions()
	opts.Algorithm = pozyx.AlgorithmTracking
	opts.Dimension = pozyx.Dimension25D
	opts.HeightMM = 1750
	s, err := Connect(sim, "", opts)
	require.NoError(t, err)

	sample, _ := s.Poll()
	c := sim.CallsTo(pozyx.OpRequestPosition)[0]
	assert.Equal(t, pozyx.AlgorithmTracking, c.Algorithm)
	assert.Equal(t, pozyx.Dimension25D, c.Dimension)
	assert.Equal(t, 1750, c.HeightMM)
	assert.Equal(t, 1750.0, sample.Position.Z)
}

func TestPoll_HeightAsZ(t *testing.T) {
	fix := []pozyx.Fix{{Position: pozyx.Coordinates{X: 1, Y: 2, Z: 99}, Status: pozyx.StatusSuccess}}

	sim := pozyx.NewSimulator("sim")
	sim.Fixes = fix
	opts := testOptions()
	opts.HeightAsZ = true
	opts.HeightMM = 1300
	s, err := Connect(sim, "", opts)
	require.NoError(t, err)
	sample, _ := s.Poll()
	assert.Equal(t, 1300.0, sample.Position.Z)

	sim = pozyx.NewSimulator("sim")
	sim.Fixes = fix
	opts.Dimension = pozyx.Dimension3D
	s, err = Connect(sim, "", opts)
	require.NoError(t, err)
	sample, _ = s.Poll()
	assert.Equal(t, 99.0, sample.Position.Z, "3D keeps the measured z")
}

func TestPoll_ClosedSession(t *testing.T) {
	sim := pozyx.NewSimulator("sim")
	s := connect(t, sim)
	require.NoError(t, s.Close())

	sample, st := s.Poll()
	assert.Equal(t, pozyx.StatusFailure, st)
	assert.Equal(t, PoseSample{}, sample)
	assert.Empty(t, sim.CallsTo(pozyx.OpRequestPosition))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(pozyx.StatusSuccess))
	assert.ErrorIs(t, Classify(pozyx.StatusFailure), ErrPositioningFailure)
	assert.ErrorIs(t, Classify(pozyx.StatusTimeout), ErrPositioningTimeout)
	assert.ErrorIs(t, Classify(pozyx.Status(42)), ErrPositioningFailure)
}

func TestPoseSample_String(t *testing.T) {
	s := PoseSample{
		Position:    pozyx.Coordinates{X: 1, Y: 2.5, Z: -3},
		Orientation: pozyx.Quaternion{W: 1},
	}
	assert.Equal(t, "x=1 y=2.5 z=-3 q=(0, 0, 0, 1)", s.String())
}
