package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/mqtt"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `mqtt:
  broker: "mqtt://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  use_tls: false
  qos:
    command: 1
simulation:
  robots: 12
  world_size: 20
  tick_period: 500ms
  boundary: none
  seed: 42
metrics:
  prometheus_addr: ":9102"
  sinks:
    - type: "nop"
logging:
  level: debug
  format: console
sentry:
  environment: test
api:
  addr: ":8080"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "mqtt://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"qos.command", cfg.MQTT.QoS[mqtt.QoSCommand], byte(1)},
		{"robots", cfg.Simulation.Robots, 12},
		{"world_size", cfg.Simulation.WorldSize, 20.0},
		{"tick_period", cfg.Simulation.TickPeriod, 500 * time.Millisecond},
		{"boundary", cfg.Simulation.Boundary, world.BoundaryNone},
		{"seed", cfg.Simulation.Seed, int64(42)},
		{"wheel_base default", cfg.Simulation.WheelBase, 0.1},
		{"max_linear_speed default", cfg.Simulation.MaxLinearSpeed, 0.3},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9102"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"sentry.environment", cfg.Sentry.Environment, "test"},
		{"api.addr", cfg.API.Addr, ":8080"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"simulation": {"robots": 3, "status_interval": "0s"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Simulation.Robots)
	assert.Equal(t, time.Duration(0), cfg.Simulation.StatusInterval)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRobots, cfg.Simulation.Robots)
	assert.Equal(t, 10.0, cfg.Simulation.WorldSize)
	assert.Equal(t, time.Second, cfg.Simulation.TickPeriod)
	assert.Equal(t, world.BoundaryBounce, cfg.Simulation.Boundary)
	assert.Equal(t, 10*time.Second, cfg.Simulation.StatusInterval)
	assert.Equal(t, Default().Simulation, cfg.Simulation)
	assert.Equal(t, mqtt.DefaultBroker, cfg.MQTT.Broker)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "simulation:\n  robots: 2\n")
	t.Setenv("ROBOTSIM_SIMULATION__ROBOTS", "7")
	t.Setenv("ROBOTSIM_SIMULATION__WORLD_SIZE", "15.5")
	t.Setenv("ROBOTSIM_MQTT__BROKER", "broker.local:1884")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Simulation.Robots)
	assert.Equal(t, 15.5, cfg.Simulation.WorldSize)
	assert.Equal(t, "broker.local:1884", cfg.MQTT.Broker)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative robots": "simulation:\n  robots: -1\n",
		"bad wheel base":  "simulation:\n  robots: 1\n  wheel_base: -0.1\n",
		"bad boundary":    "simulation:\n  robots: 1\n  boundary: wrap\n",
		"bad level":       "logging:\n  level: loud\n",
		"bad auth":        "mqtt:\n  auth_method: magic\n",
		"bad sample rate": "sentry:\n  traces_sample_rate: 2\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", "robots = 1"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
