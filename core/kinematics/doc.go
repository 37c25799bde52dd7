// Package kinematics implements the differential-drive motion model used by
// simulated robots. It is purely numeric: Advance maps a pose and a pair of
// fractional motor powers to the pose reached after a time delta.
//
// Headings are in radians, positions in meters and the forward direction of
// a robot with heading θ is (cos θ, sin θ).
package kinematics
