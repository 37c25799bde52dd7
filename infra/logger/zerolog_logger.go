package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where and how log entries are written.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level"`
	// Format is "json" or "console". Empty follows APP_ENV (dev = console).
	Format string `json:"format"`
	// File redirects output to a rotating log file when set.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (o *Options) SetDefaults() {
	if o.Level == "" {
		o.Level = "info"
	}
	if o.File != "" && o.MaxSizeMB == 0 {
		o.MaxSizeMB = 50
	}
}

// Validate checks the level and format values.
func (o Options) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(o.Level)); err != nil {
		return fmt.Errorf("invalid log level %q", o.Level)
	}
	switch o.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", o.Format)
	}
	if o.MaxSizeMB < 0 || o.MaxBackups < 0 || o.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

var (
	baseMu sync.RWMutex
	base   *zerolog.Logger
	closer io.Closer
)

// Setup configures the writer and level shared by every logger created
// afterwards. It returns a function that releases the log file, if any.
func Setup(o Options) (func() error, error) {
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := zerolog.ParseLevel(strings.ToLower(o.Level))

	var out io.Writer = os.Stdout
	var c io.Closer
	if o.File != "" {
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
		out, c = lj, lj
	}
	format := o.Format
	if format == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		format = "console"
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: o.File != ""}
	}
	z := zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	baseMu.Lock()
	base, closer = &z, c
	baseMu.Unlock()
	return func() error {
		baseMu.Lock()
		defer baseMu.Unlock()
		if closer == nil {
			return nil
		}
		err := closer.Close()
		closer = nil
		return err
	}, nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger tagged with the component field.
// Without a prior Setup the APP_ENV environment variable determines the
// output format.
func NewZerologLogger(component string) Logger {
	baseMu.RLock()
	b := base
	baseMu.RUnlock()
	if b != nil {
		return &ZerologLogger{log: b.With().Str("component", component).Logger()}
	}
	env := strings.ToLower(os.Getenv("APP_ENV"))
	var z zerolog.Logger
	if env == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		z = zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	} else {
		z = zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
	}
	return &ZerologLogger{log: z}
}

// NewWithWriter returns a logger writing JSON entries to w. Tests use it to
// inspect output.
func NewWithWriter(component string, w io.Writer) Logger {
	return &ZerologLogger{log: zerolog.New(w).With().Str("component", component).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
