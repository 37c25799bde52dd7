package robot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/robotsim/core/kinematics"
)

// ErrMalformedCommand is returned for commands that cannot be interpreted.
var ErrMalformedCommand = errors.New("malformed command")

// Legacy command tokens.
const (
	TokenLeft  = "l"
	TokenRight = "r"
	TokenStop  = "s"
)

// Command is a motor instruction resolved at the messaging boundary. It is
// either Structured or Legacy.
type Command interface {
	// Kind names the variant for logs and metrics.
	Kind() string
	motors() (kinematics.MotorCommand, error)
}

// Structured sets both motor powers explicitly. Values outside [-1, 1] are
// clamped when applied.
type Structured struct {
	Left  float64
	Right float64
}

func (Structured) Kind() string { return "structured" }

func (s Structured) motors() (kinematics.MotorCommand, error) {
	if !finite(s.Left) || !finite(s.Right) {
		return kinematics.MotorCommand{}, fmt.Errorf("%w: non-finite power (%v, %v)", ErrMalformedCommand, s.Left, s.Right)
	}
	return kinematics.MotorCommand{Left: s.Left, Right: s.Right}.Clamp(), nil
}

// Legacy is a single token command kept for older controllers: "l" turns
// left in place, "r" turns right in place, "s" stops and anything else
// drives both wheels forward at full power.
type Legacy struct {
	Token string
}

func (Legacy) Kind() string { return "legacy" }

func (l Legacy) motors() (kinematics.MotorCommand, error) {
	switch l.Token {
	case TokenLeft:
		return kinematics.MotorCommand{Left: -1, Right: 1}, nil
	case TokenRight:
		return kinematics.MotorCommand{Left: 1, Right: -1}, nil
	case TokenStop:
		return kinematics.MotorCommand{}, nil
	default:
		return kinematics.MotorCommand{Left: 1, Right: 1}, nil
	}
}

// ParseCommand decodes a command payload. A JSON object is read as a
// Structured command where missing fields default to 0 and present fields
// must be numbers or numeric strings. A JSON string carries a legacy token.
// Any other payload, including malformed JSON, is used verbatim as a legacy
// token.
func ParseCommand(payload []byte) (Command, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		return parseStructured(trimmed)
	}
	var token string
	if err := json.Unmarshal(trimmed, &token); err == nil {
		return Legacy{Token: token}, nil
	}
	return Legacy{Token: string(trimmed)}, nil
}

func parseStructured(data []byte) (Command, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	left, err := powerField(raw, "left")
	if err != nil {
		return nil, err
	}
	right, err := powerField(raw, "right")
	if err != nil {
		return nil, err
	}
	return Structured{Left: left, Right: right}, nil
}

func powerField(raw map[string]any, key string) (float64, error) {
	v, ok := raw[key]
	if !ok {
		return 0, nil
	}
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrMalformedCommand, key, v)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedCommand, key, err)
	}
	if !finite(f) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrMalformedCommand, key)
	}
	return f, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
