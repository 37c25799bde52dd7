// Package scenarios replays scripted motor commands against a World and
// checks the resulting poses. Scenarios are YAML files; they run without a
// broker and with fixed tick deltas, so results are deterministic.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/robotsim/core/kinematics"
)

type PoseDef struct {
	Robot   int     `yaml:"robot"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"`
}

// StepDef sends Command to Robot, when set, then advances Ticks ticks of Dt.
type StepDef struct {
	Robot   int           `yaml:"robot"`
	Command string        `yaml:"command,omitempty"`
	Ticks   int           `yaml:"ticks,omitempty"`
	Dt      time.Duration `yaml:"dt,omitempty"`
}

// Expected is the pose a robot must reach. A nil Heading is not checked.
type Expected struct {
	Robot     int      `yaml:"robot"`
	X         float64  `yaml:"x"`
	Y         float64  `yaml:"y"`
	Heading   *float64 `yaml:"heading,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	WorldSize   float64    `yaml:"world_size,omitempty"`
	Boundary    string     `yaml:"boundary,omitempty"`
	Robots      []PoseDef  `yaml:"robots"`
	Steps       []StepDef  `yaml:"steps"`
	Expected    []Expected `yaml:"expected"`
}

// DefaultTolerance applies to expectations without an explicit tolerance.
const DefaultTolerance = 1e-3

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks that robots are numbered 0..n-1 in order and that steps
// and expectations reference existing robots.
func (sc *Scenario) Validate() error {
	if len(sc.Robots) == 0 {
		return fmt.Errorf("scenario %q has no robots", sc.Name)
	}
	for i, r := range sc.Robots {
		if r.Robot != i {
			return fmt.Errorf("scenario %q: robot %d listed at position %d", sc.Name, r.Robot, i)
		}
	}
	for i, st := range sc.Steps {
		if st.Ticks < 0 || st.Dt < 0 {
			return fmt.Errorf("scenario %q: step %d has negative ticks or dt", sc.Name, i)
		}
	}
	for _, e := range sc.Expected {
		if e.Robot < 0 || e.Robot >= len(sc.Robots) {
			return fmt.Errorf("scenario %q: expectation for unknown robot %d", sc.Name, e.Robot)
		}
	}
	return nil
}

func (sc *Scenario) poses() []kinematics.Pose {
	out := make([]kinematics.Pose, len(sc.Robots))
	for i, r := range sc.Robots {
		out[i] = kinematics.Pose{X: r.X, Y: r.Y, Heading: r.Heading}
	}
	return out
}
