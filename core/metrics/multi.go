package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTick forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTick(ev TickEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTick(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommand forwards command events to sinks that support them.
func (m *MultiSink) RecordCommand(ev CommandEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CommandRecorder); ok {
			if err := rec.RecordCommand(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRobotStates forwards pose snapshots to sinks that support them.
func (m *MultiSink) RecordRobotStates(evs []RobotStateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RobotStateRecorder); ok {
			if err := rec.RecordRobotStates(evs); err != nil {
				return err
			}
		}
	}
	return nil
}
