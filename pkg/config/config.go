// Package config loads the YAML configuration of a federate.
//
// A minimal file names the federation, the federate and the time step:
//
//	federation: SEE
//	federate:
//	  name: lander
//	time:
//	  step: 1s
//
// Every other setting has a default (see Default).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/dispatch"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/federate"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Default values.
const (
	DefaultFederateType     = "SEE"
	DefaultRTIPort          = 8989
	DefaultDiscoveryTimeout = 5 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// Config is the federate configuration file.
type Config struct {
	Federation string          `yaml:"federation"`
	Federate   FederateSection `yaml:"federate"`
	RTI        RTISection      `yaml:"rti"`
	Time       TimeSection     `yaml:"time"`
	Sync       SyncSection     `yaml:"sync"`
	Dispatch   DispatchSection `yaml:"dispatch"`
	Instance   InstanceSection `yaml:"instance"`
	Log        LogSection      `yaml:"log"`
}

// FederateSection identifies the federate.
type FederateSection struct {
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	MaxJoinAttempts int    `yaml:"max_join_attempts"`
}

// RTISection locates the central runtime component. With Discover set and
// no Host, the component is looked up through mDNS.
type RTISection struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	Discover         bool          `yaml:"discover"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
}

// TimeSection configures time management. Logical times are written as
// durations ("1s", "250ms") and stored in microseconds.
type TimeSection struct {
	Step                time.Duration `yaml:"step"`
	Lookahead           time.Duration `yaml:"lookahead"`
	Regulating          bool          `yaml:"regulating"`
	Constrained         bool          `yaml:"constrained"`
	LateJoiner          bool          `yaml:"late_joiner"`
	LeastCommonTimeStep time.Duration `yaml:"least_common_time_step"`
	MaxCycles           uint64        `yaml:"max_cycles"`
}

// SyncSection names the synchronization points that gate execution.
type SyncSection struct {
	Start         string        `yaml:"start"`
	RegisterStart bool          `yaml:"register_start"`
	Freeze        string        `yaml:"freeze"`
	Run           string        `yaml:"run"`
	Shutdown      string        `yaml:"shutdown"`
	AwaitTimeout  time.Duration `yaml:"await_timeout"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

// DispatchSection sizes the notification dispatcher.
type DispatchSection struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// InstanceSection configures the entity registry.
type InstanceSection struct {
	ReservationTimeout time.Duration `yaml:"reservation_timeout"`
}

// LogSection configures operational logging and trace capture.
type LogSection struct {
	Level string `yaml:"level"`

	// Format is "text", "json" or "logrus".
	Format string `yaml:"format"`

	// TraceFile, if set, receives a CBOR trace of runtime calls.
	TraceFile string `yaml:"trace_file"`
}

// Default returns a configuration with every optional setting filled in.
func Default() *Config {
	return &Config{
		Federate: FederateSection{
			Type:            DefaultFederateType,
			MaxJoinAttempts: federate.DefaultMaxJoinAttempts,
		},
		RTI: RTISection{
			Port:             DefaultRTIPort,
			DiscoveryTimeout: DefaultDiscoveryTimeout,
		},
		Sync: SyncSection{
			AwaitTimeout: federate.DefaultAwaitTimeout,
		},
		Dispatch: DispatchSection{
			Workers:   dispatch.DefaultWorkers,
			QueueSize: dispatch.DefaultQueueSize,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadError reports a configuration file that could not be used.
type LoadError struct {
	// File is the path of the configuration file, if any.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Parse decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document leaves the defaults; validation reports what is
	// missing.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Message: "validation failed", Cause: err}
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Federation == "":
		return fmt.Errorf("%w: federation is required", ErrInvalid)
	case c.Federate.Name == "":
		return fmt.Errorf("%w: federate.name is required", ErrInvalid)
	case c.Time.Step <= 0:
		return fmt.Errorf("%w: time.step must be positive", ErrInvalid)
	case c.Time.Step%time.Microsecond != 0:
		return fmt.Errorf("%w: time.step must be a whole number of microseconds", ErrInvalid)
	case c.Time.Lookahead < 0:
		return fmt.Errorf("%w: time.lookahead must not be negative", ErrInvalid)
	case c.Time.LateJoiner && c.Time.LeastCommonTimeStep <= 0:
		return fmt.Errorf("%w: time.least_common_time_step is required for late joiners", ErrInvalid)
	case c.Sync.Run != "" && c.Sync.Freeze == "":
		return fmt.Errorf("%w: sync.run requires sync.freeze", ErrInvalid)
	case c.RTI.Port < 0 || c.RTI.Port > 65535:
		return fmt.Errorf("%w: rti.port %d out of range", ErrInvalid, c.RTI.Port)
	case c.Dispatch.Workers < 0 || c.Dispatch.QueueSize < 0:
		return fmt.Errorf("%w: dispatch sizes must not be negative", ErrInvalid)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json", "logrus":
	default:
		return fmt.Errorf("%w: log.format %q (want text, json or logrus)", ErrInvalid, c.Log.Format)
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}

// RTIAddress returns "host:port", or "" when the host is unset.
func (c *Config) RTIAddress() string {
	if c.RTI.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.RTI.Host, c.RTI.Port)
}

// FederateConfig converts the file into a federate configuration.
func (c *Config) FederateConfig(logger *slog.Logger, trace log.Logger) federate.Config {
	return federate.Config{
		FederationName:      c.Federation,
		FederateName:        c.Federate.Name,
		FederateType:        c.Federate.Type,
		MaxJoinAttempts:     c.Federate.MaxJoinAttempts,
		Step:                rti.TimeFromDuration(c.Time.Step),
		Lookahead:           rti.TimeFromDuration(c.Time.Lookahead),
		Regulating:          c.Time.Regulating,
		Constrained:         c.Time.Constrained,
		LateJoiner:          c.Time.LateJoiner,
		LeastCommonTimeStep: rti.TimeFromDuration(c.Time.LeastCommonTimeStep),
		StartPoint:          c.Sync.Start,
		RegisterStartPoint:  c.Sync.RegisterStart,
		FreezePoint:         c.Sync.Freeze,
		RunPoint:            c.Sync.Run,
		ShutdownPoint:       c.Sync.Shutdown,
		MaxCycles:           c.Time.MaxCycles,
		PollInterval:        c.Sync.PollInterval,
		AwaitTimeout:        c.Sync.AwaitTimeout,
		ReservationTimeout:  c.Instance.ReservationTimeout,
		Dispatch: dispatch.Config{
			Workers:   c.Dispatch.Workers,
			QueueSize: c.Dispatch.QueueSize,
			Logger:    logger,
		},
		Trace:  trace,
		Logger: logger,
	}
}
