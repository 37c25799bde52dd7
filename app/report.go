package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	coremetrics "github.com/kilianp07/robotsim/core/metrics"
	"github.com/kilianp07/robotsim/core/robot"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/logger"
)

// recordStates forwards every tick's robot statuses to rec until ctx is done
// or the report bus closes.
func recordStates(ctx context.Context, reports <-chan world.TickReport, rec coremetrics.RobotStateRecorder, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-reports:
			if !ok {
				return
			}
			evs := make([]coremetrics.RobotStateEvent, len(r.Statuses))
			for i, st := range r.Statuses {
				evs[i] = coremetrics.RobotStateEvent{Status: st, Tick: r.Seq, Time: r.Time}
			}
			if err := rec.RecordRobotStates(evs); err != nil {
				log.Debugf("record robot states: %v", err)
			}
		}
	}
}

// reportStatus logs the fleet status every interval.
func reportStatus(ctx context.Context, every time.Duration, w *world.World, log logger.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Infof("fleet status:\n%s", formatStatus(w.Snapshots()))
		}
	}
}

// formatStatus renders one line per robot.
func formatStatus(statuses []robot.Status) string {
	var b strings.Builder
	for i, st := range statuses {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Robot %d: Pos(%.2f, %.2f) Angle: %.1f°",
			st.RobotID, st.X, st.Y, st.Orientation*180/math.Pi)
	}
	return b.String()
}
