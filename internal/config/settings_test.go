package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/uwbpose/internal/pozyx"
	"github.com/banshee-data/uwbpose/internal/serialport"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, serialport.DefaultBaudRate, s.BaudRate)
	assert.Equal(t, 1000, s.HeightMM)
	assert.Equal(t, pozyx.AlgorithmUWBOnly, s.GetAlgorithm())
	assert.Equal(t, pozyx.Dimension2D, s.GetDimension())
	assert.Empty(t, s.Port, "empty port means auto-discover")
	assert.Zero(t, s.Interval)
	assert.Zero(t, s.Cycles)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero baud", func(s *Settings) { s.BaudRate = 0 }},
		{"unknown algorithm", func(s *Settings) { s.Algorithm = "KALMAN" }},
		{"unknown dimension", func(s *Settings) { s.Dimension = "4D" }},
		{"negative height", func(s *Settings) { s.HeightMM = -1 }},
		{"negative interval", func(s *Settings) { s.Interval = -time.Second }},
		{"negative cycles", func(s *Settings) { s.Cycles = -3 }},
		{"bad log level", func(s *Settings) { s.LogLevel = "chatty" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidConfig)
		})
	}
}

func TestGetters(t *testing.T) {
	s := Default()
	s.Algorithm = "tracking"
	s.Dimension = "2.5D"
	assert.Equal(t, pozyx.AlgorithmTracking, s.GetAlgorithm())
	assert.Equal(t, pozyx.Dimension25D, s.GetDimension())

	s.Dimension = "5D"
	assert.Equal(t, pozyx.Dimension25D, s.GetDimension())

	s.Algorithm = "nonsense"
	s.Dimension = "nonsense"
	assert.Equal(t, pozyx.AlgorithmUWBOnly, s.GetAlgorithm())
	assert.Equal(t, pozyx.Dimension2D, s.GetDimension())
}
