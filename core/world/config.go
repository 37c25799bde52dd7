package world

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidRobotCount = errors.New("robot count must be positive")
	ErrInvalidWheelBase  = errors.New("wheel base must be positive and finite")
	ErrInvalidWorldSize  = errors.New("world size must be positive and finite")
	ErrInvalidSpeed      = errors.New("max linear speed must be finite and not negative")
	ErrInvalidTickPeriod = errors.New("tick period must be positive")
)

// Config holds the simulation parameters.
type Config struct {
	// Robots is the fleet size.
	Robots int `json:"robots"`
	// WorldSize is the side of the square arena in meters.
	WorldSize float64 `json:"world_size"`
	// WheelBase is the distance between the two wheels in meters.
	WheelBase float64 `json:"wheel_base"`
	// MaxLinearSpeed is the wheel edge speed at full power in m/s.
	MaxLinearSpeed float64 `json:"max_linear_speed"`
	// TickPeriod is the nominal interval between ticks.
	TickPeriod time.Duration `json:"tick_period"`
	// Boundary selects the wall policy: "bounce" or "none".
	Boundary string `json:"boundary"`
	// CommandQueue bounds the number of commands waiting for dispatch.
	CommandQueue int `json:"command_queue"`
	// Seed seeds the formation headings. Zero uses the current time.
	Seed int64 `json:"seed"`
	// StatusInterval is how often the fleet status is logged. Zero disables it.
	StatusInterval time.Duration `json:"status_interval"`
}

// DefaultConfig returns the parameters of the reference robot.
func DefaultConfig() Config {
	return Config{
		WorldSize:      10.0,
		WheelBase:      0.1,
		MaxLinearSpeed: 0.3,
		TickPeriod:     time.Second,
		Boundary:       BoundaryBounce,
		CommandQueue:   256,
		StatusInterval: 10 * time.Second,
	}
}

// SetDefaults fills zero values with DefaultConfig values. Robots is left as is.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.WorldSize == 0 {
		c.WorldSize = d.WorldSize
	}
	if c.WheelBase == 0 {
		c.WheelBase = d.WheelBase
	}
	if c.MaxLinearSpeed == 0 {
		c.MaxLinearSpeed = d.MaxLinearSpeed
	}
	if c.TickPeriod == 0 {
		c.TickPeriod = d.TickPeriod
	}
	if c.Boundary == "" {
		c.Boundary = d.Boundary
	}
	if c.CommandQueue == 0 {
		c.CommandQueue = d.CommandQueue
	}
}

// Validate checks the construction preconditions.
func (c Config) Validate() error {
	if c.Robots <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRobotCount, c.Robots)
	}
	if !positiveFinite(c.WheelBase) {
		return fmt.Errorf("%w: %v", ErrInvalidWheelBase, c.WheelBase)
	}
	if !positiveFinite(c.WorldSize) {
		return fmt.Errorf("%w: %v", ErrInvalidWorldSize, c.WorldSize)
	}
	if c.MaxLinearSpeed != 0 && !positiveFinite(c.MaxLinearSpeed) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, c.MaxLinearSpeed)
	}
	if c.TickPeriod <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTickPeriod, c.TickPeriod)
	}
	if c.CommandQueue <= 0 {
		return fmt.Errorf("command queue must be positive: %d", c.CommandQueue)
	}
	if c.StatusInterval < 0 {
		return fmt.Errorf("status interval must not be negative: %v", c.StatusInterval)
	}
	if _, err := NewBoundary(c.Boundary, c.WorldSize); err != nil {
		return err
	}
	return nil
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}
