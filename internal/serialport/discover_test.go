package serialport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPorts(t *testing.T, ports []PortInfo, err error) {
	t.Helper()
	orig := ListPorts
	ListPorts = func() ([]PortInfo, error) { return ports, err }
	t.Cleanup(func() { ListPorts = orig })
}

func TestUSBMatcher_Match(t *testing.T) {
	m := USBMatcher{VID: "0483", PID: "5740", Product: []string{"Virtual COM Port"}}

	tests := []struct {
		name string
		port PortInfo
		want bool
	}{
		{"vid pid", PortInfo{IsUSB: true, VID: "0483", PID: "5740"}, true},
		{"non usb with ids", PortInfo{IsUSB: false, VID: "0483", PID: "5740"}, false},
		{"other device", PortInfo{IsUSB: true, VID: "1a86", PID: "7523"}, false},
		{"product name", PortInfo{Product: "STMicroelectronics Virtual COM Port"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Match(tc.port))
		})
	}
}

func TestDiscover_FirstMatch(t *testing.T) {
	withPorts(t, []PortInfo{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "0483", PID: "5740"},
		{Name: "/dev/ttyACM1", IsUSB: true, VID: "0483", PID: "5740"},
	}, nil)

	name, err := Discover(USBMatcher{VID: "0483", PID: "5740"}.Match)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", name)
}

func TestDiscover_NoMatch(t *testing.T) {
	withPorts(t, []PortInfo{{Name: "/dev/ttyS0"}}, nil)

	_, err := Discover(USBMatcher{VID: "0483", PID: "5740"}.Match)
	assert.ErrorIs(t, err, ErrNoMatchingPort)
}

func TestDiscover_EnumerationError(t *testing.T) {
	boom := errors.New("permission denied")
	withPorts(t, nil, boom)

	_, err := Discover(func(PortInfo) bool { return true })
	assert.ErrorIs(t, err, boom)
}
