package pozyx

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// Register payloads are little endian and travel as lower-case hex.

func encodeDevice(dev DeviceCoordinates) []byte {
	b := make([]byte, 0, 15)
	b = binary.LittleEndian.AppendUint16(b, dev.NetworkID)
	b = append(b, dev.Flag)
	b = appendMillimetres(b, dev.Pos.X)
	b = appendMillimetres(b, dev.Pos.Y)
	b = appendMillimetres(b, dev.Pos.Z)
	return b
}

func appendMillimetres(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(int32(math.Round(v))))
}

func decodeCoordinates(b []byte) (Coordinates, error) {
	if len(b) < 12 {
		return Coordinates{}, fmt.Errorf("coordinates: want 12 bytes, got %d", len(b))
	}
	return Coordinates{
		X: float64(int32(binary.LittleEndian.Uint32(b[0:]))),
		Y: float64(int32(binary.LittleEndian.Uint32(b[4:]))),
		Z: float64(int32(binary.LittleEndian.Uint32(b[8:]))),
	}, nil
}

// decodeQuaternion reads the w, x, y, z int16 register block.
func decodeQuaternion(b []byte) (Quaternion, error) {
	if len(b) < 8 {
		return Quaternion{}, fmt.Errorf("quaternion: want 8 bytes, got %d", len(b))
	}
	component := func(off int) float64 {
		return float64(int16(binary.LittleEndian.Uint16(b[off:]))) / quatScale
	}
	return Quaternion{
		W: component(0),
		X: component(2),
		Y: component(4),
		Z: component(6),
	}, nil
}

// parseReply strips the "D," prefix of a data reply and decodes its payload.
// Replies starting with "E" report a device-side error.
func parseReply(line string) ([]byte, error) {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "E"):
		return nil, fmt.Errorf("device error reply %q", line)
	case strings.HasPrefix(line, "D,"):
		data, err := hex.DecodeString(line[2:])
		if err != nil {
			return nil, fmt.Errorf("decode reply %q: %w", line, err)
		}
		return data, nil
	case line == "D" || line == "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected reply %q", line)
	}
}

func writeCommand(reg byte, data []byte) string {
	return fmt.Sprintf("W,%02x,%s", reg, hex.EncodeToString(data))
}

func readCommand(reg byte, size int) string {
	return fmt.Sprintf("R,%02x,%d", reg, size)
}

// functionCommand asks for size result bytes plus the leading status byte.
func functionCommand(reg byte, params []byte, size int) string {
	return fmt.Sprintf("F,%02x,%s,%d", reg, hex.EncodeToString(params), size+1)
}
