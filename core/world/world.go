package world

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kilianp07/robotsim/core/kinematics"
	"github.com/kilianp07/robotsim/core/logger"
	"github.com/kilianp07/robotsim/core/metrics"
	"github.com/kilianp07/robotsim/core/monitoring"
	"github.com/kilianp07/robotsim/core/robot"
	"github.com/kilianp07/robotsim/internal/eventbus"
)

// TickReport summarizes one completed tick.
type TickReport struct {
	Seq      uint64
	Dt       time.Duration
	Time     time.Time
	Statuses []robot.Status
}

// Status is the aggregate view of the world.
type Status struct {
	WorldSize float64        `json:"world_size"`
	NumRobots int            `json:"num_robots"`
	Robots    []robot.Status `json:"robots"`
}

// Option customizes a World.
type Option func(*World)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(w *World) { w.log = l } }

// WithMetrics sets the metrics sink. Sinks implementing
// metrics.CommandRecorder also receive command outcomes.
func WithMetrics(s metrics.MetricsSink) Option { return func(w *World) { w.sink = s } }

// WithReports publishes a TickReport on bus after every tick.
func WithReports(bus *eventbus.TypedBus[TickReport]) Option {
	return func(w *World) { w.reports = bus }
}

// WithClock replaces the wall clock used to measure tick deltas.
func WithClock(now func() time.Time) Option { return func(w *World) { w.now = now } }

// WithRand sets the random source used for formation headings.
func WithRand(rng *rand.Rand) Option { return func(w *World) { w.rng = rng } }

// WithInitialPoses replaces the formation with explicit poses, one per robot.
func WithInitialPoses(poses []kinematics.Pose) Option {
	return func(w *World) { w.initial = append([]kinematics.Pose(nil), poses...) }
}

type inbound struct {
	topic   string
	payload []byte
}

// World owns the robots of one simulation.
type World struct {
	cfg      Config
	boundary robot.Boundary
	gw       Gateway
	log      logger.Logger
	sink     metrics.MetricsSink
	reports  *eventbus.TypedBus[TickReport]
	now      func() time.Time
	rng      *rand.Rand
	initial  []kinematics.Pose

	mu     sync.Mutex // guards robots and seq
	robots []*robot.Robot
	seq    uint64

	lifeMu  sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	inbox        chan inbound
	closed       chan struct{}
	closeOnce    sync.Once
	dispatchDone chan struct{}
}

// New validates cfg, places cfg.Robots robots in formation and subscribes to
// their command topics. A subscription failure leaves the world usable in a
// degraded mode. A nil gateway behaves as a disconnected one.
func New(cfg Config, gw Gateway, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	boundary, err := NewBoundary(cfg.Boundary, cfg.WorldSize)
	if err != nil {
		return nil, err
	}
	if gw == nil {
		gw = nopGateway{}
	}
	w := &World{
		cfg:          cfg,
		boundary:     boundary,
		gw:           gw,
		log:          nopLogger{},
		sink:         metrics.NopSink{},
		now:          time.Now,
		inbox:        make(chan inbound, cfg.CommandQueue),
		closed:       make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		w.rng = rand.New(rand.NewSource(seed))
	}

	poses := w.initial
	if poses == nil {
		poses, err = Formation(cfg.Robots, cfg.WorldSize, w.rng)
		if err != nil {
			return nil, err
		}
	} else if len(poses) != cfg.Robots {
		return nil, fmt.Errorf("%w: %d initial poses for %d robots", ErrInvalidRobotCount, len(poses), cfg.Robots)
	}
	w.robots = make([]*robot.Robot, len(poses))
	for i, p := range poses {
		w.robots[i] = robot.New(i, p, cfg.WheelBase, cfg.MaxLinearSpeed)
	}

	go w.runDispatcher()
	w.subscribe()
	return w, nil
}

func (w *World) subscribe() {
	for _, r := range w.robots {
		topic := CommandTopic(r.ID())
		if err := w.gw.Subscribe(topic, w.enqueue); err != nil {
			w.log.Warnf("subscribe %s: %v", topic, err)
			monitoring.CaptureException(err, map[string]string{"module": "world", "topic": topic})
			continue
		}
		w.log.Debugf("subscribed to %s", topic)
	}
}

// Size returns the arena side length in meters.
func (w *World) Size() float64 { return w.cfg.WorldSize }

// Len returns the number of robots.
func (w *World) Len() int { return len(w.robots) }

// Config returns the configuration the world was built with.
func (w *World) Config() Config { return w.cfg }

// Poses returns the current pose of every robot, in id order.
func (w *World) Poses() []kinematics.Pose {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]kinematics.Pose, len(w.robots))
	for i, r := range w.robots {
		out[i] = r.Pose()
	}
	return out
}

// Motors returns the effective motor powers of every robot, in id order.
func (w *World) Motors() []kinematics.MotorCommand {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]kinematics.MotorCommand, len(w.robots))
	for i, r := range w.robots {
		out[i] = r.Motors()
	}
	return out
}

// Snapshots returns the status of every robot, in id order.
func (w *World) Snapshots() []robot.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotsLocked()
}

func (w *World) snapshotsLocked() []robot.Status {
	out := make([]robot.Status, len(w.robots))
	for i, r := range w.robots {
		out[i] = r.Snapshot()
	}
	return out
}

// Status returns the aggregate world view.
func (w *World) Status() Status {
	return Status{WorldSize: w.cfg.WorldSize, NumRobots: len(w.robots), Robots: w.Snapshots()}
}

// Close stops the tick loop and the command dispatcher. The gateway is not
// closed; it belongs to the caller.
func (w *World) Close() {
	w.Stop()
	w.closeOnce.Do(func() {
		close(w.closed)
		<-w.dispatchDone
	})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
