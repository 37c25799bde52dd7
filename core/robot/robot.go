// Package robot holds the state of a single simulated differential-drive
// robot: its identity, pose, current motor command and physical constants.
//
// A Robot is not safe for concurrent use; the owning world serializes access.
package robot

import (
	"errors"
	"math"

	"github.com/kilianp07/robotsim/core/kinematics"
)

// Boundary constrains a pose after each kinematic step.
type Boundary interface {
	Constrain(p kinematics.Pose) kinematics.Pose
}

// Status is the published view of a robot.
type Status struct {
	RobotID     int     `json:"robot_id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"`
}

// Robot is one simulated robot.
type Robot struct {
	id             int
	pose           kinematics.Pose
	motors         kinematics.MotorCommand
	wheelBase      float64
	maxLinearSpeed float64
}

// New creates a stopped robot at the given pose. wheelBase must be positive.
func New(id int, pose kinematics.Pose, wheelBase, maxLinearSpeed float64) *Robot {
	pose.Heading = kinematics.NormalizeHeading(pose.Heading)
	return &Robot{id: id, pose: pose, wheelBase: wheelBase, maxLinearSpeed: maxLinearSpeed}
}

// ID returns the robot identifier.
func (r *Robot) ID() int { return r.id }

// Pose returns the current pose.
func (r *Robot) Pose() kinematics.Pose { return r.pose }

// Motors returns the effective motor powers.
func (r *Robot) Motors() kinematics.MotorCommand { return r.motors }

// WheelBase returns the distance between the wheels in meters.
func (r *Robot) WheelBase() float64 { return r.wheelBase }

// MaxLinearSpeed returns the wheel edge speed at full power in m/s.
func (r *Robot) MaxLinearSpeed() float64 { return r.maxLinearSpeed }

// SetCommand applies a command. On error the previous motor state is kept.
func (r *Robot) SetCommand(cmd Command) error {
	if cmd == nil {
		return errors.Join(ErrMalformedCommand, errors.New("nil command"))
	}
	m, err := cmd.motors()
	if err != nil {
		return err
	}
	r.motors = m
	return nil
}

// Tick advances the robot by dt seconds and constrains the result with b.
// A nil boundary leaves the arena unbounded.
func (r *Robot) Tick(dt float64, b Boundary) {
	next := kinematics.Advance(r.pose, r.motors, r.wheelBase, r.maxLinearSpeed, dt)
	if b != nil {
		next = b.Constrain(next)
	}
	r.pose = next
}

// Snapshot returns the status to publish, with coordinates rounded to
// millimeters.
func (r *Robot) Snapshot() Status {
	return Status{
		RobotID:     r.id,
		X:           round3(r.pose.X),
		Y:           round3(r.pose.Y),
		Orientation: r.pose.Heading,
	}
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
