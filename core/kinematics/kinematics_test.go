package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	wheelBase = 0.1
	maxSpeed  = 0.3
)

func TestAdvanceStraight(t *testing.T) {
	start := Pose{X: 1, Y: 1, Heading: math.Pi / 2}
	got := Advance(start, MotorCommand{Left: 1, Right: 1}, wheelBase, maxSpeed, 2)
	assert.InDelta(t, 1.0, got.X, 1e-9)
	assert.InDelta(t, 1.6, got.Y, 1e-9)
	assert.Equal(t, start.Heading, got.Heading)
}

func TestAdvanceEqualPowerKeepsHeading(t *testing.T) {
	for _, p := range []float64{-1, -0.4, 0.25, 1} {
		for _, h := range []float64{-3, -1, 0, 0.7, math.Pi} {
			start := Pose{X: 5, Y: 5, Heading: h}
			got := Advance(start, MotorCommand{Left: p, Right: p}, wheelBase, maxSpeed, 0.37)
			assert.Equal(t, h, got.Heading, "power %v heading %v", p, h)
		}
	}
}

func TestAdvanceZeroCommandKeepsPose(t *testing.T) {
	pose := Pose{X: 2.5, Y: 7.25, Heading: -1.2}
	for i := 0; i < 50; i++ {
		pose = Advance(pose, MotorCommand{}, wheelBase, maxSpeed, 1)
	}
	assert.Equal(t, Pose{X: 2.5, Y: 7.25, Heading: -1.2}, pose)
}

func TestAdvanceTurnInPlace(t *testing.T) {
	start := Pose{X: 3, Y: 3, Heading: 0}
	// omega = (0.3 - -0.3) / 0.1 = 6 rad/s
	got := Advance(start, MotorCommand{Left: -1, Right: 1}, wheelBase, maxSpeed, 0.1)
	assert.InDelta(t, 0.6, got.Heading, 1e-9)
	assert.InDelta(t, 3.0, got.X, 1e-9)
	assert.InDelta(t, 3.0, got.Y, 1e-9)
}

func TestAdvanceTurnTranslatesAlongNewHeading(t *testing.T) {
	start := Pose{X: 0, Y: 0, Heading: 0}
	// vLeft = 0, vRight = 0.3: omega = 3 rad/s, velocity = 0.15 m/s
	dt := 0.5
	got := Advance(start, MotorCommand{Left: 0, Right: 1}, wheelBase, maxSpeed, dt)
	wantHeading := 1.5
	assert.InDelta(t, wantHeading, got.Heading, 1e-9)
	assert.InDelta(t, 0.15*dt*math.Cos(wantHeading), got.X, 1e-9)
	assert.InDelta(t, 0.15*dt*math.Sin(wantHeading), got.Y, 1e-9)
}

func TestAdvanceNonPositiveDt(t *testing.T) {
	start := Pose{X: 1, Y: 2, Heading: 0.5}
	assert.Equal(t, start, Advance(start, MotorCommand{Left: 1, Right: -1}, wheelBase, maxSpeed, 0))
	assert.Equal(t, start, Advance(start, MotorCommand{Left: 1, Right: 1}, wheelBase, maxSpeed, -1))
}

func TestAdvanceBelowEpsilonIsStraight(t *testing.T) {
	start := Pose{X: 0, Y: 0, Heading: 0}
	// 0.0005 * 0.3 m/s difference is under the straight-line threshold.
	got := Advance(start, MotorCommand{Left: 0.5, Right: 0.5005}, wheelBase, maxSpeed, 1)
	assert.Equal(t, 0.0, got.Heading)
	assert.Greater(t, got.X, 0.0)
}

func TestNormalizeHeading(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{2 * math.Pi, 0},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, NormalizeHeading(c.in), 1e-9, "in %v", c.in)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, MotorCommand{Left: 1, Right: -1}, MotorCommand{Left: 5, Right: -5}.Clamp())
	assert.Equal(t, MotorCommand{Left: 0.2, Right: -0.3}, MotorCommand{Left: 0.2, Right: -0.3}.Clamp())
}

func TestTurnRadius(t *testing.T) {
	assert.True(t, math.IsInf(TurnRadius(MotorCommand{Left: 1, Right: 1}, wheelBase, maxSpeed), 1))
	assert.InDelta(t, 0.0, TurnRadius(MotorCommand{Left: -1, Right: 1}, wheelBase, maxSpeed), 1e-12)
	assert.InDelta(t, 0.05, TurnRadius(MotorCommand{Left: 0, Right: 1}, wheelBase, maxSpeed), 1e-12)
}
