package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/robotsim/core/metrics"
	"github.com/kilianp07/robotsim/core/monitoring"
	"github.com/kilianp07/robotsim/core/robot"
)

// ErrUnknownRobot is returned by Dispatch for ids outside the fleet.
var ErrUnknownRobot = errors.New("unknown robot")

// enqueue is the gateway handler. It never blocks: when the inbox is full the
// command is dropped.
func (w *World) enqueue(topic string, payload []byte) {
	select {
	case <-w.closed:
		return
	default:
	}
	msg := inbound{topic: topic, payload: append([]byte(nil), payload...)}
	select {
	case w.inbox <- msg:
	default:
		w.log.Warnf("command queue full, dropping message on %s", topic)
		id, _ := ParseCommandTopic(topic)
		w.recordCommand(id, "", metrics.OutcomeDropped)
	}
}

func (w *World) runDispatcher() {
	defer close(w.dispatchDone)
	defer monitoring.Recover()
	for {
		select {
		case <-w.closed:
			return
		case msg := <-w.inbox:
			w.HandleMessage(msg.topic, msg.payload)
		}
	}
}

// HandleMessage decodes a raw command message and dispatches it. Malformed
// commands are logged and ignored; commands for unknown robots are ignored.
func (w *World) HandleMessage(topic string, payload []byte) {
	id, ok := ParseCommandTopic(topic)
	if !ok {
		w.log.Warnf("ignoring message on unexpected topic %s", topic)
		return
	}
	cmd, err := robot.ParseCommand(payload)
	if err != nil {
		w.log.Warnf("robot %d: invalid command %q: %v", id, payload, err)
		w.recordCommand(id, "", metrics.OutcomeRejected)
		return
	}
	if err := w.Dispatch(id, cmd); err != nil {
		if errors.Is(err, ErrUnknownRobot) {
			w.log.Debugf("ignoring command for unknown robot %d", id)
			return
		}
		w.log.Warnf("robot %d: %v", id, err)
	}
}

// Dispatch applies cmd to robot id. It returns ErrUnknownRobot when no such
// robot exists and robot.ErrMalformedCommand when the command is rejected; in
// both cases no state changes.
func (w *World) Dispatch(id int, cmd robot.Command) error {
	kind := ""
	if cmd != nil {
		kind = cmd.Kind()
	}
	w.mu.Lock()
	r := w.robotLocked(id)
	if r == nil {
		w.mu.Unlock()
		w.recordCommand(id, kind, metrics.OutcomeUnknownID)
		return fmt.Errorf("%w: %d", ErrUnknownRobot, id)
	}
	err := r.SetCommand(cmd)
	motors := r.Motors()
	w.mu.Unlock()

	if err != nil {
		w.recordCommand(id, kind, metrics.OutcomeRejected)
		return err
	}
	w.recordCommand(id, kind, metrics.OutcomeApplied)
	w.log.Debugw("command applied", map[string]any{
		"robot_id": id,
		"kind":     kind,
		"left":     motors.Left,
		"right":    motors.Right,
	})
	return nil
}

// robotLocked finds a robot by id. Ids are the slice indexes.
func (w *World) robotLocked(id int) *robot.Robot {
	if id < 0 || id >= len(w.robots) {
		return nil
	}
	return w.robots[id]
}

func (w *World) recordCommand(id int, kind, outcome string) {
	rec, ok := w.sink.(metrics.CommandRecorder)
	if !ok {
		return
	}
	ev := metrics.CommandEvent{RobotID: id, Kind: kind, Outcome: outcome, Time: time.Now()}
	if err := rec.RecordCommand(ev); err != nil {
		w.log.Debugf("record command: %v", err)
	}
}
