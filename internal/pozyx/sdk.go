package pozyx

import "errors"

// ErrNoDevice is returned by DiscoverPort when no tag is attached.
var ErrNoDevice = errors.New("pozyx: no tag found")

// SDK finds and opens tags.
type SDK interface {
	// DiscoverPort returns the first serial port with a tag attached.
	DiscoverPort() (string, error)
	// Open connects to the tag on port.
	Open(port string) (Conn, error)
}

// Conn is an open connection to one tag. Device commands report a Status
// rather than an error; transport problems surface as StatusFailure.
type Conn interface {
	// ClearDevices empties the tag's device list.
	ClearDevices() Status
	// AddDevice appends one anchor to the device list.
	AddDevice(dev DeviceCoordinates) Status
	// SelectAnchors sets the anchor selection mode and the number of anchors
	// the positioning uses.
	SelectAnchors(mode AnchorSelection, count int) Status
	// SaveAnchors writes the anchor id list and the anchor-count register to
	// flash.
	SaveAnchors() Status
	// RequestPosition runs one positioning fix. heightMM is only used with
	// Dimension25D.
	RequestPosition(dim Dimension, heightMM int, alg Algorithm) (Coordinates, Status)
	// RequestOrientation reads the current orientation quaternion.
	RequestOrientation() (Quaternion, Status)
	// Close releases the serial port.
	Close() error
}
