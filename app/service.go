package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/robotsim/api/robots"
	"github.com/kilianp07/robotsim/config"
	"github.com/kilianp07/robotsim/core/factory"
	coremetrics "github.com/kilianp07/robotsim/core/metrics"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/logger"
	"github.com/kilianp07/robotsim/infra/metrics"
	"github.com/kilianp07/robotsim/infra/mqtt"
	"github.com/kilianp07/robotsim/internal/eventbus"
)

// Gateway is the messaging transport the service owns.
type Gateway interface {
	world.Gateway
	Close()
}

var newGateway = func(cfg mqtt.Config) (Gateway, error) {
	gw, err := mqtt.NewGateway(cfg)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// Service wires the world to the broker, the metrics sinks and the status
// reporter.
type Service struct {
	World *world.World

	cfg      *config.Config
	gw       Gateway
	sink     coremetrics.MetricsSink
	reports  *eventbus.TypedBus[world.TickReport]
	log      logger.Logger
	promAddr string

	closeOnce sync.Once
}

// New creates a Service from the configuration. An unreachable broker is not
// an error; the world runs without messaging until it connects.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	sink, err := coremetrics.NewMetricsSink(sinkConfigs(cfg.Metrics))
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	gw, err := newGateway(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt gateway: %w", err)
	}
	reports := eventbus.NewTyped[world.TickReport]()
	w, err := world.New(cfg.Simulation, gw,
		world.WithLogger(logger.New("world")),
		world.WithMetrics(sink),
		world.WithReports(reports),
	)
	if err != nil {
		gw.Close()
		reports.Close()
		return nil, fmt.Errorf("world: %w", err)
	}
	return &Service{
		World:    w,
		cfg:      cfg,
		gw:       gw,
		sink:     sink,
		reports:  reports,
		log:      log,
		promAddr: cfg.Metrics.PrometheusAddr,
	}, nil
}

// sinkConfigs adds a prometheus sink when the endpoint is enabled but no
// sink feeds it.
func sinkConfigs(cfg coremetrics.Config) []factory.ModuleConfig {
	sinks := cfg.Sinks
	if cfg.PrometheusAddr == "" {
		return sinks
	}
	for _, s := range sinks {
		if s.Type == "prometheus" {
			return sinks
		}
	}
	return append(append([]factory.ModuleConfig(nil), sinks...), factory.ModuleConfig{Type: "prometheus"})
}

// Run starts the simulation and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.banner()

	var wg sync.WaitGroup
	if rec, ok := s.sink.(coremetrics.RobotStateRecorder); ok {
		sub := s.reports.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			recordStates(ctx, sub, rec, s.log)
		}()
	}
	if every := s.cfg.Simulation.StatusInterval; every > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reportStatus(ctx, every, s.World, s.log)
		}()
	}
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if s.cfg.API.Addr != "" {
		go func() {
			if err := robots.Serve(ctx, s.cfg.API.Addr, s.World); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}

	s.World.Start()
	<-ctx.Done()
	s.World.Stop()
	wg.Wait()
	return nil
}

func (s *Service) banner() {
	broker, _ := mqtt.NormalizeBroker(s.cfg.MQTT.Broker)
	s.log.Infof("simulating %d robots in a %.1fm x %.1fm world, broker %s",
		s.World.Len(), s.World.Size(), s.World.Size(), broker)
	s.log.Infof("send commands to %s, e.g. {\"left\": 1.0, \"right\": 1.0} or l, r, s",
		world.CommandTopicFilter)
	s.log.Infof("status published on %s every %s", world.PositionTopicFilter, s.cfg.Simulation.TickPeriod)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.World.Close()
		s.reports.Close()
		s.gw.Close()
		if c, ok := s.sink.(interface{ Close() }); ok {
			c.Close()
		}
	})
	return nil
}
