package pozyx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/uwbpose/internal/serialport"
)

// fakeFirmware answers register commands the way the tag does.
type fakeFirmware struct {
	mu        sync.Mutex
	regs      map[byte][]byte
	devices   [][]byte
	saves     [][]byte
	commands  []string
	posResult byte // interrupt bits raised after positioning, 0 = never
	failFn    map[byte]bool
}

func newFakeFirmware() *fakeFirmware {
	return &fakeFirmware{
		regs:      map[byte][]byte{},
		posResult: intStatusPos,
		failFn:    map[byte]bool{},
	}
}

func (f *fakeFirmware) respond(written []byte) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	line := strings.TrimSuffix(string(written), "\r")
	f.commands = append(f.commands, line)
	parts := strings.Split(line, ",")
	reg64, err := strconv.ParseUint(parts[1], 16, 8)
	if err != nil {
		return []byte("E,00\r\n")
	}
	reg := byte(reg64)

	switch parts[0] {
	case "W":
		data, _ := hex.DecodeString(parts[2])
		f.regs[reg] = data
		return []byte("D\r\n")
	case "R":
		size, _ := strconv.Atoi(parts[2])
		data := f.regs[reg]
		if reg == regIntStatus {
			f.regs[regIntStatus] = []byte{0}
		}
		buf := make([]byte, size)
		copy(buf, data)
		return []byte("D," + hex.EncodeToString(buf) + "\r\n")
	case "F":
		params, _ := hex.DecodeString(parts[2])
		if f.failFn[reg] {
			return []byte("D,00\r\n")
		}
		switch reg {
		case fnDevicesClear:
			f.devices = nil
		case fnDeviceAdd:
			f.devices = append(f.devices, params)
		case fnFlashSave:
			f.saves = append(f.saves, params)
		case fnDoPositioning:
			f.regs[regIntStatus] = []byte{f.posResult}
		}
		return []byte("D,01\r\n")
	}
	return []byte("E,01\r\n")
}

func openFake(t *testing.T, fw *fakeFirmware) (Conn, *serialport.TestableSerialPort) {
	t.Helper()
	port := serialport.NewTestableSerialPort()
	port.Responder = fw.respond
	logger := zerolog.Nop()
	sdk := &SerialSDK{
		ReplyTimeout:       50 * time.Millisecond,
		PositioningTimeout: 30 * time.Millisecond,
		Logger:             &logger,
		OpenPort: func(path string, opts serialport.PortOptions) (serialport.SerialPorter, error) {
			return port, nil
		},
	}
	conn, err := sdk.Open("/dev/ttyACM0")
	require.NoError(t, err)
	return conn, port
}

func TestSerialSDK_OpenError(t *testing.T) {
	sdk := &SerialSDK{
		OpenPort: func(string, serialport.PortOptions) (serialport.SerialPorter, error) {
			return nil, errors.New("busy")
		},
	}
	_, err := sdk.Open("/dev/ttyACM0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/ttyACM0")
}

func TestSerialSDK_DiscoverPort(t *testing.T) {
	orig := serialport.ListPorts
	t.Cleanup(func() { serialport.ListPorts = orig })

	serialport.ListPorts = func() ([]serialport.PortInfo, error) {
		return []serialport.PortInfo{{Name: "/dev/ttyACM3", IsUSB: true, VID: "0483", PID: "5740"}}, nil
	}
	sdk := &SerialSDK{}
	port, err := sdk.DiscoverPort()
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM3", port)

	serialport.ListPorts = func() ([]serialport.PortInfo, error) { return nil, nil }
	_, err = sdk.DiscoverPort()
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestSerialConn_Provisioning(t *testing.T) {
	fw := newFakeFirmware()
	conn, _ := openFake(t, fw)

	assert.Equal(t, StatusSuccess, conn.ClearDevices())
	assert.Equal(t, StatusSuccess, conn.AddDevice(DeviceCoordinates{NetworkID: 0x6110, Pos: Coordinates{X: 1, Y: 2, Z: 3}}))
	assert.Equal(t, StatusSuccess, conn.SelectAnchors(AnchorSelectionAuto, 5))
	assert.Equal(t, StatusSuccess, conn.SaveAnchors())

	require.Len(t, fw.devices, 1)
	assert.Equal(t, "106100010000000200000003000000", hex.EncodeToString(fw.devices[0]))
	assert.Equal(t, []byte{0x85}, fw.regs[regPosNumAnchor])
	assert.Equal(t, [][]byte{{flashAnchorIDs}, {flashRegisters, regPosNumAnchor}}, fw.saves)
}

func TestSerialConn_FunctionFailure(t *testing.T) {
	fw := newFakeFirmware()
	fw.failFn[fnDeviceAdd] = true
	conn, _ := openFake(t, fw)

	assert.Equal(t, StatusFailure, conn.AddDevice(DeviceCoordinates{NetworkID: 1}))
	assert.Equal(t, StatusSuccess, conn.ClearDevices())
}

func TestSerialConn_SelectAnchorsRange(t *testing.T) {
	fw := newFakeFirmware()
	conn, port := openFake(t, fw)
	assert.Equal(t, StatusFailure, conn.SelectAnchors(AnchorSelectionAuto, 0))
	assert.Empty(t, port.GetWrittenData())

	// The count field is four bits wide, larger counts saturate.
	assert.Equal(t, StatusSuccess, conn.SelectAnchors(AnchorSelectionAuto, 20))
	assert.Equal(t, []byte{0x8f}, fw.regs[regPosNumAnchor])
}

func TestSerialConn_RequestPosition(t *testing.T) {
	fw := newFakeFirmware()
	fw.regs[regPosX], _ = hex.DecodeString("e8030000feffffffd0070000")
	conn, _ := openFake(t, fw)

	pos, st := conn.RequestPosition(Dimension2D, 1000, AlgorithmUWBOnly)
	require.Equal(t, StatusSuccess, st)
	assert.Equal(t, Coordinates{X: 1000, Y: -2, Z: 2000}, pos)
	assert.Equal(t, []byte{0x20}, fw.regs[regPosAlg])
	_, heightWritten := fw.regs[regPosZ]
	assert.False(t, heightWritten, "2D positioning must not write the height register")
}

func TestSerialConn_RequestPosition25DWritesHeight(t *testing.T) {
	fw := newFakeFirmware()
	conn, _ := openFake(t, fw)

	_, st := conn.RequestPosition(Dimension25D, 1500, AlgorithmTracking)
	require.Equal(t, StatusSuccess, st)
	assert.Equal(t, "dc050000", hex.EncodeToString(fw.regs[regPosZ]))
	assert.Equal(t, []byte{0x14}, fw.regs[regPosAlg])
}

func TestSerialConn_RequestPositionFailureAndTimeout(t *testing.T) {
	fw := newFakeFirmware()
	fw.posResult = intStatusErr
	conn, _ := openFake(t, fw)

	_, st := conn.RequestPosition(Dimension2D, 0, AlgorithmUWBOnly)
	assert.Equal(t, StatusFailure, st)

	fw.mu.Lock()
	fw.posResult = 0
	fw.mu.Unlock()
	_, st = conn.RequestPosition(Dimension2D, 0, AlgorithmUWBOnly)
	assert.Equal(t, StatusTimeout, st)
}

func TestSerialConn_RequestOrientation(t *testing.T) {
	fw := newFakeFirmware()
	fw.regs[regQuatW], _ = hex.DecodeString("004000e000000010")
	conn, _ := openFake(t, fw)

	q, st := conn.RequestOrientation()
	require.Equal(t, StatusSuccess, st)
	assert.Equal(t, Quaternion{W: 1, X: -0.5, Y: 0, Z: 0.25}, q)
}

func TestSerialConn_TransportErrorIsFailure(t *testing.T) {
	conn, port := openFake(t, newFakeFirmware())
	port.WriteError = fmt.Errorf("unplugged")

	assert.Equal(t, StatusFailure, conn.ClearDevices())
	require.NoError(t, conn.Close())
	assert.True(t, port.Closed)
}
