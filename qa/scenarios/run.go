package scenarios

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/logger"
)

// Mismatch describes one expectation that did not hold.
type Mismatch struct {
	Robot int
	Field string
	Want  float64
	Got   float64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("robot %d %s: want %.4f, got %.4f", m.Robot, m.Field, m.Want, m.Got)
}

// Run plays sc against a fresh world and returns the failed expectations.
// Commands go through the same parsing path as messages from the broker.
func Run(sc *Scenario, log logger.Logger) ([]Mismatch, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	cfg := world.DefaultConfig()
	cfg.Robots = len(sc.Robots)
	if sc.WorldSize > 0 {
		cfg.WorldSize = sc.WorldSize
	}
	if sc.Boundary != "" {
		cfg.Boundary = sc.Boundary
	}
	w, err := world.New(cfg, nil, world.WithLogger(log), world.WithInitialPoses(sc.poses()))
	if err != nil {
		return nil, err
	}
	defer w.Close()

	for _, st := range sc.Steps {
		if st.Command != "" {
			w.HandleMessage(world.CommandTopic(st.Robot), []byte(st.Command))
		}
		dt := st.Dt
		if dt == 0 {
			dt = time.Second
		}
		for i := 0; i < st.Ticks; i++ {
			w.Step(dt)
		}
	}

	var out []Mismatch
	poses := w.Poses()
	for _, e := range sc.Expected {
		tol := e.Tolerance
		if tol == 0 {
			tol = DefaultTolerance
		}
		p := poses[e.Robot]
		if math.Abs(p.X-e.X) > tol {
			out = append(out, Mismatch{Robot: e.Robot, Field: "x", Want: e.X, Got: p.X})
		}
		if math.Abs(p.Y-e.Y) > tol {
			out = append(out, Mismatch{Robot: e.Robot, Field: "y", Want: e.Y, Got: p.Y})
		}
		if e.Heading != nil && headingDiff(p.Heading, *e.Heading) > tol {
			out = append(out, Mismatch{Robot: e.Robot, Field: "heading", Want: *e.Heading, Got: p.Heading})
		}
	}
	return out, nil
}

// headingDiff is the absolute angular distance between a and b.
func headingDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	return math.Min(d, 2*math.Pi-d)
}
