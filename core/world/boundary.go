package world

import (
	"fmt"
	"math"

	"github.com/kilianp07/robotsim/core/kinematics"
	"github.com/kilianp07/robotsim/core/robot"
)

// Boundary policy names accepted in Config.Boundary.
const (
	BoundaryBounce = "bounce"
	BoundaryNone   = "none"
)

// Bounce keeps robots inside [0, Size] on both axes. A robot leaving the
// arena is clamped to the wall and its heading is mirrored: crossing x = 0 or
// x = Size maps θ to π - θ, crossing y = 0 or y = Size maps θ to -θ.
type Bounce struct {
	Size float64
}

// Constrain implements robot.Boundary.
func (b Bounce) Constrain(p kinematics.Pose) kinematics.Pose {
	if p.X < 0 || p.X > b.Size {
		p.X = math.Max(0, math.Min(b.Size, p.X))
		p.Heading = math.Pi - p.Heading
	}
	if p.Y < 0 || p.Y > b.Size {
		p.Y = math.Max(0, math.Min(b.Size, p.Y))
		p.Heading = -p.Heading
	}
	p.Heading = kinematics.NormalizeHeading(p.Heading)
	return p
}

// Unbounded lets robots leave the arena.
type Unbounded struct{}

// Constrain implements robot.Boundary.
func (Unbounded) Constrain(p kinematics.Pose) kinematics.Pose { return p }

// NewBoundary returns the policy registered under name for an arena of the
// given size. An empty name selects bounce.
func NewBoundary(name string, size float64) (robot.Boundary, error) {
	switch name {
	case "", BoundaryBounce:
		return Bounce{Size: size}, nil
	case BoundaryNone:
		return Unbounded{}, nil
	default:
		return nil, fmt.Errorf("unknown boundary policy %q", name)
	}
}
