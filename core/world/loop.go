package world

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/kilianp07/robotsim/core/metrics"
	"github.com/kilianp07/robotsim/core/monitoring"
	coremqtt "github.com/kilianp07/robotsim/core/mqtt"
	"github.com/kilianp07/robotsim/core/robot"
)

// Start launches the tick loop. It is a no-op while the loop is already
// running or after Close.
func (w *World) Start() {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	if w.running {
		return
	}
	select {
	case <-w.closed:
		return
	default:
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stop, w.done)
	w.log.Infof("simulation started with %d robots", len(w.robots))
}

// Stop halts the tick loop and waits for an in-flight tick to finish. No
// tick runs after Stop returns. Robot poses are kept, so a later Start
// resumes where the simulation left off.
func (w *World) Stop() {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	if !w.running {
		return
	}
	close(w.stop)
	<-w.done
	w.running = false
	w.log.Infof("simulation stopped")
}

// Running reports whether the tick loop is active.
func (w *World) Running() bool {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	return w.running
}

// loop ticks every TickPeriod. Robots integrate the measured time since the
// previous tick rather than the nominal period.
func (w *World) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer monitoring.Recover()

	ticker := time.NewTicker(w.cfg.TickPeriod)
	defer ticker.Stop()
	last := w.now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		select {
		case <-stop:
			return
		default:
		}
		now := w.now()
		w.step(now, now.Sub(last))
		last = now
	}
}

// Step advances every robot by dt, publishes their statuses and returns the
// tick report. The tick loop calls it; tests may drive it directly.
func (w *World) Step(dt time.Duration) TickReport {
	return w.step(w.now(), dt)
}

func (w *World) step(now time.Time, dt time.Duration) TickReport {
	started := time.Now()

	w.mu.Lock()
	w.seq++
	seq := w.seq
	secs := dt.Seconds()
	for _, r := range w.robots {
		r.Tick(secs, w.boundary)
	}
	statuses := w.snapshotsLocked()
	w.mu.Unlock()

	failed := w.publish(statuses)
	report := TickReport{Seq: seq, Dt: dt, Time: now, Statuses: statuses}
	if w.reports != nil {
		w.reports.Publish(report)
	}
	ev := metrics.TickEvent{
		Seq:           seq,
		Dt:            dt,
		Took:          time.Since(started),
		Robots:        len(statuses),
		PublishErrors: failed,
		Time:          report.Time,
	}
	if err := w.sink.RecordTick(ev); err != nil {
		w.log.Debugf("record tick: %v", err)
	}
	return report
}

// publish sends every status and returns the number of failed publications.
// A disconnected gateway is expected in degraded mode and only logged at
// debug level. After a publish timeout the rest of the pass is skipped, so a
// stalled broker costs at most one timeout per tick.
func (w *World) publish(statuses []robot.Status) int {
	failed := 0
	var disconnected bool
	for i, st := range statuses {
		payload, err := json.Marshal(st)
		if err != nil {
			w.log.Errorf("marshal status for robot %d: %v", st.RobotID, err)
			failed++
			continue
		}
		if err := w.gw.Publish(PositionTopic(st.RobotID), payload); err != nil {
			failed++
			if errors.Is(err, coremqtt.ErrNotConnected) {
				disconnected = true
				continue
			}
			w.log.Warnf("publish status for robot %d: %v", st.RobotID, err)
			monitoring.CaptureException(err, map[string]string{"module": "world", "op": "publish"})
			if errors.Is(err, coremqtt.ErrPublishTimeout) {
				skipped := len(statuses) - i - 1
				if skipped > 0 {
					w.log.Warnf("broker stalled, skipped %d status publications", skipped)
				}
				return failed + skipped
			}
		}
	}
	if disconnected {
		w.log.Debugf("gateway disconnected, skipped status publication")
	}
	return failed
}
