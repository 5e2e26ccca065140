package pozyx

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/banshee-data/uwbpose/internal/serialport"
)

// serialConn drives a tag through its register command set.
type serialConn struct {
	ex         *serialport.Exchanger
	log        zerolog.Logger
	posTimeout time.Duration
	pollEvery  time.Duration
}

func (c *serialConn) regWrite(reg byte, data []byte) Status {
	cmd := writeCommand(reg, data)
	reply, err := c.ex.Exchange(cmd)
	if err == nil {
		_, err = parseReply(reply)
	}
	if err != nil {
		c.log.Debug().Err(err).Str("cmd", cmd).Msg("register write failed")
		return StatusFailure
	}
	return StatusSuccess
}

func (c *serialConn) regRead(reg byte, size int) ([]byte, Status) {
	cmd := readCommand(reg, size)
	reply, err := c.ex.Exchange(cmd)
	var data []byte
	if err == nil {
		data, err = parseReply(reply)
	}
	if err == nil && len(data) < size {
		err = fmt.Errorf("short read: want %d bytes, got %d", size, len(data))
	}
	if err != nil {
		c.log.Debug().Err(err).Str("cmd", cmd).Msg("register read failed")
		return nil, StatusFailure
	}
	return data, StatusSuccess
}

// regFunction calls a register function. The first reply byte is the
// function's own status: 1 on success.
func (c *serialConn) regFunction(reg byte, params []byte, size int) ([]byte, Status) {
	cmd := functionCommand(reg, params, size)
	reply, err := c.ex.Exchange(cmd)
	var data []byte
	if err == nil {
		data, err = parseReply(reply)
	}
	if err == nil && len(data) == 0 {
		err = fmt.Errorf("function %#02x returned no status byte", reg)
	}
	if err != nil {
		c.log.Debug().Err(err).Str("cmd", cmd).Msg("register function failed")
		return nil, StatusFailure
	}
	if data[0] != 1 {
		return data[1:], StatusFailure
	}
	return data[1:], StatusSuccess
}

func (c *serialConn) ClearDevices() Status {
	_, st := c.regFunction(fnDevicesClear, nil, 0)
	return st
}

func (c *serialConn) AddDevice(dev DeviceCoordinates) Status {
	_, st := c.regFunction(fnDeviceAdd, encodeDevice(dev), 0)
	return st
}

func (c *serialConn) SelectAnchors(mode AnchorSelection, count int) Status {
	if count < 1 {
		c.log.Warn().Int("count", count).Msg("anchor count out of range")
		return StatusFailure
	}
	if count > MaxSelectedAnchors {
		c.log.Warn().Int("count", count).Int("max", MaxSelectedAnchors).Msg("anchor count clamped to register width")
		count = MaxSelectedAnchors
	}
	return c.regWrite(regPosNumAnchor, []byte{byte(mode)<<7 | byte(count)})
}

func (c *serialConn) SaveAnchors() Status {
	_, ids := c.regFunction(fnFlashSave, []byte{flashAnchorIDs}, 0)
	_, regs := c.regFunction(fnFlashSave, []byte{flashRegisters, regPosNumAnchor}, 0)
	if ids.OK() && regs.OK() {
		return StatusSuccess
	}
	return StatusFailure
}

func (c *serialConn) RequestPosition(dim Dimension, heightMM int, alg Algorithm) (Coordinates, Status) {
	if dim == Dimension25D {
		height := appendMillimetres(nil, float64(heightMM))
		if st := c.regWrite(regPosZ, height); !st.OK() {
			return Coordinates{}, st
		}
	}
	if st := c.regWrite(regPosAlg, []byte{byte(alg) | byte(dim)<<4}); !st.OK() {
		return Coordinates{}, st
	}
	// reading the interrupt register clears stale flags
	if _, st := c.regRead(regIntStatus, 1); !st.OK() {
		return Coordinates{}, st
	}
	if _, st := c.regFunction(fnDoPositioning, nil, 0); !st.OK() {
		return Coordinates{}, st
	}

	if st := c.waitForPosition(); !st.OK() {
		return Coordinates{}, st
	}

	data, st := c.regRead(regPosX, 12)
	if !st.OK() {
		return Coordinates{}, st
	}
	pos, err := decodeCoordinates(data)
	if err != nil {
		c.log.Debug().Err(err).Msg("decode position")
		return Coordinates{}, StatusFailure
	}
	return pos, StatusSuccess
}

// waitForPosition polls the interrupt register until the position flag or
// the error flag is raised, or the positioning timeout passes.
func (c *serialConn) waitForPosition() Status {
	deadline := time.Now().Add(c.posTimeout)
	for {
		data, st := c.regRead(regIntStatus, 1)
		if st.OK() {
			switch {
			case data[0]&intStatusErr != 0:
				return StatusFailure
			case data[0]&intStatusPos != 0:
				return StatusSuccess
			}
		}
		if time.Now().After(deadline) {
			return StatusTimeout
		}
		time.Sleep(c.pollEvery)
	}
}

func (c *serialConn) RequestOrientation() (Quaternion, Status) {
	data, st := c.regRead(regQuatW, 8)
	if !st.OK() {
		return Quaternion{}, st
	}
	q, err := decodeQuaternion(data)
	if err != nil {
		c.log.Debug().Err(err).Msg("decode quaternion")
		return Quaternion{}, StatusFailure
	}
	return q, StatusSuccess
}

func (c *serialConn) Close() error {
	return c.ex.Close()
}
