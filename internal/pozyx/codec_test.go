package pozyx

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDevice(t *testing.T) {
	dev := DeviceCoordinates{NetworkID: 0x6110, Flag: 1, Pos: Coordinates{X: 1000, Y: -2, Z: 2000.4}}
	got := hex.EncodeToString(encodeDevice(dev))
	// id LE, flag, x, y, z as int32 LE
	assert.Equal(t, "106101"+"e8030000"+"feffffff"+"d0070000", got)
}

func TestDecodeCoordinates(t *testing.T) {
	b, _ := hex.DecodeString("e8030000feffffffd0070000")
	pos, err := decodeCoordinates(b)
	require.NoError(t, err)
	assert.Equal(t, Coordinates{X: 1000, Y: -2, Z: 2000}, pos)

	_, err = decodeCoordinates(b[:11])
	assert.Error(t, err)
}

func TestDecodeQuaternion(t *testing.T) {
	// w = 1.0, x = -0.5, y = 0, z = 0.25
	b, _ := hex.DecodeString("0040" + "00e0" + "0000" + "0010")
	q, err := decodeQuaternion(b)
	require.NoError(t, err)
	assert.Equal(t, Quaternion{W: 1, X: -0.5, Y: 0, Z: 0.25}, q)

	_, err = decodeQuaternion(b[:6])
	assert.Error(t, err)
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		line    string
		want    []byte
		wantErr bool
	}{
		{line: "D,0143", want: []byte{0x01, 0x43}},
		{line: "D,0143\r\n", want: []byte{0x01, 0x43}},
		{line: "D", want: nil},
		{line: "", want: nil},
		{line: "E,02", wantErr: true},
		{line: "D,zz", wantErr: true},
		{line: "garbage", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			got, err := parseReply(tc.line)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCommandFormats(t *testing.T) {
	assert.Equal(t, "W,15,8a", writeCommand(regPosNumAnchor, []byte{0x8a}))
	assert.Equal(t, "R,30,12", readCommand(regPosX, 12))
	assert.Equal(t, "F,c3,,1", functionCommand(fnDevicesClear, nil, 0))
	assert.Equal(t, "F,b1,0215,1", functionCommand(fnFlashSave, []byte{flashAnchorIDs, regPosNumAnchor}, 0))
}
