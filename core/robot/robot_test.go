package robot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/robotsim/core/kinematics"
)

func newTestRobot() *Robot {
	return New(3, kinematics.Pose{X: 5, Y: 5, Heading: 0.25}, 0.1, 0.3)
}

func TestSetCommandClamps(t *testing.T) {
	r := newTestRobot()
	require.NoError(t, r.SetCommand(Structured{Left: 5, Right: -5}))
	assert.Equal(t, kinematics.MotorCommand{Left: 1, Right: -1}, r.Motors())
}

func TestSetCommandLegacyTokens(t *testing.T) {
	cases := map[string]kinematics.MotorCommand{
		"l":       {Left: -1, Right: 1},
		"r":       {Left: 1, Right: -1},
		"s":       {},
		"forward": {Left: 1, Right: 1},
		"":        {Left: 1, Right: 1},
	}
	for tok, want := range cases {
		r := newTestRobot()
		require.NoError(t, r.SetCommand(Structured{Left: 0.3, Right: 0.7}))
		require.NoError(t, r.SetCommand(Legacy{Token: tok}))
		assert.Equal(t, want, r.Motors(), "token %q", tok)
	}
}

func TestStopAlwaysZero(t *testing.T) {
	r := newTestRobot()
	for _, prior := range []Command{Structured{Left: 1, Right: 1}, Legacy{Token: "l"}, Structured{Left: -0.4, Right: 0.9}} {
		require.NoError(t, r.SetCommand(prior))
		require.NoError(t, r.SetCommand(Legacy{Token: TokenStop}))
		assert.True(t, r.Motors().IsZero())
	}
}

func TestSetCommandRejectsNonFinite(t *testing.T) {
	r := newTestRobot()
	require.NoError(t, r.SetCommand(Structured{Left: 0.5, Right: 0.5}))
	err := r.SetCommand(Structured{Left: math.NaN(), Right: 0})
	assert.ErrorIs(t, err, ErrMalformedCommand)
	assert.Equal(t, kinematics.MotorCommand{Left: 0.5, Right: 0.5}, r.Motors())
	assert.ErrorIs(t, r.SetCommand(nil), ErrMalformedCommand)
}

func TestTickEqualPowerKeepsHeading(t *testing.T) {
	r := newTestRobot()
	require.NoError(t, r.SetCommand(Structured{Left: 0.6, Right: 0.6}))
	r.Tick(1.3, nil)
	assert.Equal(t, 0.25, r.Pose().Heading)
	assert.NotEqual(t, 5.0, r.Pose().X)
}

type clampX struct{ max float64 }

func (c clampX) Constrain(p kinematics.Pose) kinematics.Pose {
	if p.X > c.max {
		p.X = c.max
	}
	return p
}

func TestTickAppliesBoundary(t *testing.T) {
	r := New(0, kinematics.Pose{X: 5, Y: 5, Heading: 0}, 0.1, 0.3)
	require.NoError(t, r.SetCommand(Structured{Left: 1, Right: 1}))
	r.Tick(1, clampX{max: 5.1})
	assert.Equal(t, 5.1, r.Pose().X)
}

func TestSnapshotRounding(t *testing.T) {
	r := New(7, kinematics.Pose{X: 1.23456, Y: 9.87654, Heading: 1.5}, 0.1, 0.3)
	s := r.Snapshot()
	assert.Equal(t, Status{RobotID: 7, X: 1.235, Y: 9.877, Orientation: 1.5}, s)
	assert.InDelta(t, r.Pose().X, s.X, 0.0005)
	assert.InDelta(t, r.Pose().Y, s.Y, 0.0005)
}

func TestNewNormalizesHeading(t *testing.T) {
	r := New(0, kinematics.Pose{Heading: 3 * math.Pi / 2}, 0.1, 0.3)
	assert.InDelta(t, -math.Pi/2, r.Pose().Heading, 1e-12)
}
