package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// StraightEpsilon is the wheel speed difference (m/s) below which motion is
// treated as a straight line.
const StraightEpsilon = 0.001

// Pose is the position and heading of a robot in the arena.
type Pose struct {
	X       float64
	Y       float64
	Heading float64 // radians, normalized to (-π, π]
}

// Position returns the pose coordinates as a vector.
func (p Pose) Position() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Forward returns the unit vector the robot is facing.
func (p Pose) Forward() r2.Vec { return r2.Vec{X: math.Cos(p.Heading), Y: math.Sin(p.Heading)} }

// MotorCommand holds the fractional power applied to each wheel.
type MotorCommand struct {
	Left  float64
	Right float64
}

// Clamp returns the command with both powers limited to [-1, 1].
func (c MotorCommand) Clamp() MotorCommand {
	return MotorCommand{Left: clampUnit(c.Left), Right: clampUnit(c.Right)}
}

// IsZero reports whether both motors are stopped.
func (c MotorCommand) IsZero() bool { return c.Left == 0 && c.Right == 0 }

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// Advance integrates the pose over dt seconds. Wheel edge velocities are the
// motor powers scaled by maxLinearSpeed. When turning the heading is updated
// first and the translation follows the new heading. A non-positive dt
// returns the pose unchanged. wheelBase must be positive.
func Advance(pose Pose, cmd MotorCommand, wheelBase, maxLinearSpeed, dt float64) Pose {
	if dt <= 0 {
		return pose
	}
	vLeft := cmd.Left * maxLinearSpeed
	vRight := cmd.Right * maxLinearSpeed
	velocity := (vLeft + vRight) / 2

	next := pose
	if math.Abs(vLeft-vRight) >= StraightEpsilon {
		omega := (vRight - vLeft) / wheelBase
		next.Heading = pose.Heading + omega*dt
	}
	pos := r2.Add(next.Position(), r2.Scale(velocity*dt, next.Forward()))
	next.X, next.Y = pos.X, pos.Y
	next.Heading = NormalizeHeading(next.Heading)
	return next
}

// TurnRadius returns the signed distance from the robot center to the
// instantaneous center of curvature. It is +Inf for straight motion.
func TurnRadius(cmd MotorCommand, wheelBase, maxLinearSpeed float64) float64 {
	vLeft := cmd.Left * maxLinearSpeed
	vRight := cmd.Right * maxLinearSpeed
	if math.Abs(vRight-vLeft) < StraightEpsilon {
		return math.Inf(1)
	}
	return wheelBase * (vLeft + vRight) / (2 * (vRight - vLeft))
}

// NormalizeHeading maps an angle to (-π, π].
func NormalizeHeading(h float64) float64 {
	if h > -math.Pi && h <= math.Pi {
		return h
	}
	return h - 2*math.Pi*math.Ceil((h-math.Pi)/(2*math.Pi))
}
