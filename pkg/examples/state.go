package examples

import "math"

// Vector3 is a Cartesian vector in meters (or meters per second).
type Vector3 struct {
	X float64 `cbor:"x"`
	Y float64 `cbor:"y"`
	Z float64 `cbor:"z"`
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v * s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Norm returns the Euclidean length.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Quaternion is an attitude quaternion, scalar first.
type Quaternion struct {
	Scalar float64 `cbor:"s"`
	Vector Vector3 `cbor:"v"`
}

// IdentityQuaternion is the zero rotation.
var IdentityQuaternion = Quaternion{Scalar: 1}

// SpaceTimeCoordinateState is the translational and rotational state of a
// frame or entity at a given time.
type SpaceTimeCoordinateState struct {
	Position        Vector3    `cbor:"position"`
	Velocity        Vector3    `cbor:"velocity"`
	Attitude        Quaternion `cbor:"attitude"`
	AngularVelocity Vector3    `cbor:"angular_velocity"`

	// Time is the state epoch in seconds of terrestrial time.
	Time float64 `cbor:"time"`
}

// Propagate advances the state by dt seconds under constant acceleration.
// Attitude is left unchanged.
func (s SpaceTimeCoordinateState) Propagate(accel Vector3, dt float64) SpaceTimeCoordinateState {
	s.Position = s.Position.Add(s.Velocity.Scale(dt)).Add(accel.Scale(0.5 * dt * dt))
	s.Velocity = s.Velocity.Add(accel.Scale(dt))
	s.Time += dt
	return s
}
