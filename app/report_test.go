package app

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	coremetrics "github.com/kilianp07/robotsim/core/metrics"
	"github.com/kilianp07/robotsim/core/robot"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/logger"
)

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) RecordRobotStates(evs []coremetrics.RobotStateEvent) error {
	args := m.Called(evs)
	return args.Error(0)
}

func TestFormatStatus(t *testing.T) {
	out := formatStatus([]robot.Status{
		{RobotID: 0, X: 1.234, Y: 5.678, Orientation: math.Pi / 2},
		{RobotID: 1, X: 10, Y: 0, Orientation: -math.Pi},
	})
	assert.Equal(t, "Robot 0: Pos(1.23, 5.68) Angle: 90.0°\nRobot 1: Pos(10.00, 0.00) Angle: -180.0°", out)
	assert.Empty(t, formatStatus(nil))
}

func TestRecordStatesForwardsReports(t *testing.T) {
	now := time.Now()
	rec := &mockRecorder{}
	rec.On("RecordRobotStates", []coremetrics.RobotStateEvent{
		{Status: robot.Status{RobotID: 0, X: 1}, Tick: 3, Time: now},
		{Status: robot.Status{RobotID: 1, Y: 2}, Tick: 3, Time: now},
	}).Return(nil).Once()

	reports := make(chan world.TickReport, 1)
	reports <- world.TickReport{Seq: 3, Time: now, Statuses: []robot.Status{{RobotID: 0, X: 1}, {RobotID: 1, Y: 2}}}
	close(reports)

	recordStates(context.Background(), reports, rec, logger.NopLogger{})
	rec.AssertExpectations(t)
}

func TestRecordStatesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		recordStates(ctx, make(chan world.TickReport), &mockRecorder{}, logger.NopLogger{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recordStates did not return")
	}
}
