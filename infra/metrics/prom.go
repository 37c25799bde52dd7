package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/robotsim/core/metrics"
)

// PromSink records simulation ticks and command outcomes in Prometheus metrics.
type PromSink struct {
	ticks     prometheus.Counter
	duration  prometheus.Histogram
	dt        prometheus.Histogram
	robots    prometheus.Gauge
	pubErrors prometheus.Counter
	commands  *prometheus.CounterVec
	pose      *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "robotsim_ticks_total",
		Help: "Total number of simulation ticks",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "robotsim_tick_duration_seconds",
		Help:    "Wall time spent advancing robots and publishing their status",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	dt := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "robotsim_tick_dt_seconds",
		Help:    "Measured time between consecutive ticks",
		Buckets: prometheus.DefBuckets,
	})
	robots := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "robotsim_robots",
		Help: "Number of simulated robots",
	})
	pubErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "robotsim_publish_errors_total",
		Help: "Status publications that failed",
	})
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "robotsim_commands_total",
		Help: "Inbound motor commands by kind and outcome",
	}, []string{"kind", "outcome"})
	pose := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "robotsim_robot_pose",
		Help: "Last published robot pose component (x, y in meters, orientation in radians)",
	}, []string{"robot_id", "axis"})

	var err error
	if s.ticks, err = register(reg, ticks); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if s.dt, err = register(reg, dt); err != nil {
		return nil, err
	}
	if s.robots, err = register(reg, robots); err != nil {
		return nil, err
	}
	if s.pubErrors, err = register(reg, pubErrors); err != nil {
		return nil, err
	}
	if s.commands, err = register(reg, commands); err != nil {
		return nil, err
	}
	if s.pose, err = register(reg, pose); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordTick updates the tick counters and histograms.
func (s *PromSink) RecordTick(ev coremetrics.TickEvent) error {
	s.ticks.Inc()
	s.duration.Observe(ev.Took.Seconds())
	if ev.Dt > 0 {
		s.dt.Observe(ev.Dt.Seconds())
	}
	s.robots.Set(float64(ev.Robots))
	if ev.PublishErrors > 0 {
		s.pubErrors.Add(float64(ev.PublishErrors))
	}
	return nil
}

// RecordCommand counts a handled command.
func (s *PromSink) RecordCommand(ev coremetrics.CommandEvent) error {
	kind := ev.Kind
	if kind == "" {
		kind = "unparsed"
	}
	s.commands.WithLabelValues(kind, ev.Outcome).Inc()
	return nil
}

// RecordRobotStates exports the latest pose of each robot.
func (s *PromSink) RecordRobotStates(evs []coremetrics.RobotStateEvent) error {
	for _, ev := range evs {
		id := strconv.Itoa(ev.Status.RobotID)
		s.pose.WithLabelValues(id, "x").Set(ev.Status.X)
		s.pose.WithLabelValues(id, "y").Set(ev.Status.Y)
		s.pose.WithLabelValues(id, "orientation").Set(ev.Status.Orientation)
	}
	return nil
}
