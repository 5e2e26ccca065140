// Package pose defines the pose structure published to the robotics stack.
// Field names follow geometry_msgs/Pose.
package pose

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/uwbpose/internal/pozyx"
)

// Point is a position in millimetres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is an orientation.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Pose is a position and an orientation.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// FromSample copies a device fix into a Pose. Values are copied as is.
func FromSample(pos pozyx.Coordinates, q pozyx.Quaternion) Pose {
	return Pose{
		Position:    Point{X: pos.X, Y: pos.Y, Z: pos.Z},
		Orientation: Quaternion{X: q.X, Y: q.Y, Z: q.Z, W: q.W},
	}
}

func (q Quaternion) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// OrientationNorm is the magnitude of the orientation quaternion; 1 for a
// well formed rotation.
func (p Pose) OrientationNorm() float64 {
	return quat.Abs(p.Orientation.number())
}

// Yaw returns the heading in radians: the angle of the rotated x axis in the
// horizontal plane. A zero quaternion yields 0.
func (p Pose) Yaw() float64 {
	q := p.Orientation.number()
	n := quat.Abs(q)
	if n == 0 {
		return 0
	}
	q = quat.Scale(1/n, q)
	x := quat.Number{Imag: 1}
	r := quat.Mul(quat.Mul(q, x), quat.Conj(q))
	return math.Atan2(r.Jmag, r.Imag)
}

// Header carries the sequence number and capture time of a Stamped pose.
type Header struct {
	Seq     uint64    `json:"seq"`
	Stamp   time.Time `json:"stamp"`
	FrameID string    `json:"frame_id"`
}

// Stamped is one published pose together with the device status of the fix
// it came from. Consumers must check Status before trusting Pose.
type Stamped struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
	Status string `json:"status"`
}

// OK reports whether the fix behind the pose succeeded.
func (s Stamped) OK() bool {
	return s.Status == pozyx.StatusSuccess.String()
}
