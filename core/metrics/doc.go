// Package metrics defines the observability contracts of the simulation.
// A MetricsSink records one event per tick; sinks may additionally record
// command outcomes and robot poses by implementing CommandRecorder and
// RobotStateRecorder. Concrete sinks (Prometheus, InfluxDB) live in
// infra/metrics and register themselves with RegisterMetricsSink so they can
// be built from configuration with NewMetricsSink.
package metrics
