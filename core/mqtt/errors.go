package mqtt

import "errors"

var (
	// ErrNotConnected is returned by publish and subscribe calls while the
	// broker is unreachable. Callers treat it as a degraded, non-fatal state.
	ErrNotConnected = errors.New("mqtt: not connected")
	// ErrPublishTimeout is returned when the broker does not confirm a
	// publication in time.
	ErrPublishTimeout = errors.New("mqtt: publish timeout")
)
