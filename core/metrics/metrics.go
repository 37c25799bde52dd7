package metrics

import (
	"time"

	"github.com/kilianp07/robotsim/core/robot"
)

// TickEvent describes one pass of the simulation loop.
type TickEvent struct {
	Seq    uint64
	Dt     time.Duration // measured time since the previous tick
	Took   time.Duration // wall time spent advancing and publishing
	Robots int
	// PublishErrors counts status publications that failed during the tick.
	PublishErrors int
	Time          time.Time
}

// MetricsSink records simulation ticks.
type MetricsSink interface {
	RecordTick(ev TickEvent) error
}

// Command outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeRejected  = "rejected"
	OutcomeUnknownID = "unknown_robot"
	OutcomeDropped   = "dropped"
)

// CommandEvent captures the handling of one inbound motor command.
type CommandEvent struct {
	RobotID int
	Kind    string
	Outcome string
	Time    time.Time
}

// CommandRecorder records command handling outcomes.
type CommandRecorder interface {
	RecordCommand(ev CommandEvent) error
}

// RobotStateEvent is a snapshot of a robot taken after a tick.
type RobotStateEvent struct {
	Status robot.Status
	Tick   uint64
	Time   time.Time
}

// RobotStateRecorder records robot pose snapshots.
type RobotStateRecorder interface {
	RecordRobotStates(evs []RobotStateEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTick(TickEvent) error                 { return nil }
func (NopSink) RecordCommand(CommandEvent) error           { return nil }
func (NopSink) RecordRobotStates([]RobotStateEvent) error { return nil }
