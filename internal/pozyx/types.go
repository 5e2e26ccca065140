// Package pozyx is the capability boundary to a Pozyx UWB tag. The SDK and
// Conn interfaces are what the rest of the driver depends on; SerialSDK talks
// to a tag over its USB serial port and Simulator stands in for one.
package pozyx

import (
	"fmt"
	"strings"
)

// Status is the result code of a single device command.
type Status uint8

// Status values match the codes the tag firmware reports.
const (
	StatusFailure Status = 0
	StatusSuccess Status = 1
	StatusTimeout Status = 8
)

// OK reports whether s is StatusSuccess.
func (s Status) OK() bool { return s == StatusSuccess }

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Coordinates is a position in millimetres in the anchor frame.
type Coordinates struct {
	X, Y, Z float64
}

// Quaternion is an orientation as reported by the tag's sensor fusion.
type Quaternion struct {
	X, Y, Z, W float64
}

// DeviceCoordinates identifies an anchor and its fixed position.
type DeviceCoordinates struct {
	NetworkID uint16
	Flag      uint8
	Pos       Coordinates
}

// Dimension selects how many axes the positioning solves for.
type Dimension uint8

const (
	// Dimension25D solves x and y with z fixed to a supplied height.
	Dimension25D Dimension = 1
	Dimension2D  Dimension = 2
	Dimension3D  Dimension = 3
)

func (d Dimension) String() string {
	switch d {
	case Dimension2D:
		return "2D"
	case Dimension25D:
		return "2.5D"
	case Dimension3D:
		return "3D"
	default:
		return fmt.Sprintf("dimension(%d)", uint8(d))
	}
}

// ParseDimension accepts "2D", "2.5D" (also written "5D") and "3D".
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "2D", "2":
		return Dimension2D, nil
	case "2.5D", "2.5", "5D":
		return Dimension25D, nil
	case "3D", "3":
		return Dimension3D, nil
	}
	return 0, fmt.Errorf("unknown positioning dimension %q: expected 2D, 2.5D or 3D", s)
}

// Algorithm selects the tag's positioning algorithm.
type Algorithm uint8

const (
	AlgorithmUWBOnly  Algorithm = 0
	AlgorithmTracking Algorithm = 4
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmUWBOnly:
		return "UWB_ONLY"
	case AlgorithmTracking:
		return "TRACKING"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ParseAlgorithm accepts "UWB_ONLY" and "TRACKING" in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UWB_ONLY", "UWB-ONLY", "UWBONLY":
		return AlgorithmUWBOnly, nil
	case "TRACKING":
		return AlgorithmTracking, nil
	}
	return 0, fmt.Errorf("unknown positioning algorithm %q: expected UWB_ONLY or TRACKING", s)
}

// AnchorSelection tells the tag whether to use the anchors in list order or
// to pick the best subset itself.
type AnchorSelection uint8

const (
	AnchorSelectionManual AnchorSelection = 0
	AnchorSelectionAuto   AnchorSelection = 1
)

func (m AnchorSelection) String() string {
	if m == AnchorSelectionAuto {
		return "auto"
	}
	return "manual"
}
