package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/federate"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
)

const fullYAML = `
federation: SEE_2026
federate:
  name: lander
  type: LunarLander
  max_join_attempts: 3
rti:
  host: crc.local
  port: 8989
time:
  step: 1s
  lookahead: 500ms
  regulating: true
  constrained: true
  late_joiner: true
  least_common_time_step: 1s
  max_cycles: 100
sync:
  start: initialization_completed
  freeze: mtr_freeze
  run: mtr_run
  shutdown: mtr_shutdown
  await_timeout: 10s
  poll_interval: 5ms
dispatch:
  workers: 2
  queue_size: 64
instance:
  reservation_timeout: 2s
log:
  level: debug
  format: logrus
  trace_file: lander.cbor
`

func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)

	assert.Equal(t, "SEE_2026", cfg.Federation)
	assert.Equal(t, "lander", cfg.Federate.Name)
	assert.Equal(t, 3, cfg.Federate.MaxJoinAttempts)
	assert.Equal(t, "crc.local:8989", cfg.RTIAddress())
	assert.Equal(t, time.Second, cfg.Time.Step)
	assert.Equal(t, 500*time.Millisecond, cfg.Time.Lookahead)
	assert.Equal(t, 5*time.Millisecond, cfg.Sync.PollInterval)
	assert.Equal(t, "lander.cbor", cfg.Log.TraceFile)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseMinimalKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("federation: SEE\nfederate:\n  name: rover\ntime:\n  step: 250ms\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultFederateType, cfg.Federate.Type)
	assert.Equal(t, federate.DefaultMaxJoinAttempts, cfg.Federate.MaxJoinAttempts)
	assert.Equal(t, DefaultRTIPort, cfg.RTI.Port)
	assert.Equal(t, "", cfg.RTIAddress())
	assert.Equal(t, federate.DefaultAwaitTimeout, cfg.Sync.AwaitTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"unknown key", "federation: SEE\nfederate: {name: a}\ntime: {step: 1s}\nbogus: 1\n"},
		{"no federate name", "federation: SEE\ntime: {step: 1s}\n"},
		{"no step", "federation: SEE\nfederate: {name: a}\n"},
		{"sub-microsecond step", "federation: SEE\nfederate: {name: a}\ntime: {step: 1500ns}\n"},
		{"late joiner without lcts", "federation: SEE\nfederate: {name: a}\ntime: {step: 1s, late_joiner: true}\n"},
		{"run without freeze", "federation: SEE\nfederate: {name: a}\ntime: {step: 1s}\nsync: {run: mtr_run}\n"},
		{"bad port", "federation: SEE\nfederate: {name: a}\ntime: {step: 1s}\nrti: {port: 70000}\n"},
		{"bad level", "federation: SEE\nfederate: {name: a}\ntime: {step: 1s}\nlog: {level: loud}\n"},
		{"bad format", "federation: SEE\nfederate: {name: a}\ntime: {step: 1s}\nlog: {format: xml}\n"},
		{"bad yaml", "federation: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var le *LoadError
			assert.True(t, errors.As(err, &le))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "federate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lander", cfg.Federate.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.File, "missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("federation: SEE\n"), 0o600))
	_, err = Load(bad)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, bad, le.File)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFederateConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)

	fc := cfg.FederateConfig(nil, nil)
	require.NoError(t, fc.Validate())
	assert.Equal(t, "SEE_2026", fc.FederationName)
	assert.Equal(t, "LunarLander", fc.FederateType)
	assert.Equal(t, rti.Time(1_000_000), fc.Step)
	assert.Equal(t, rti.Time(500_000), fc.Lookahead)
	assert.Equal(t, rti.Time(1_000_000), fc.LeastCommonTimeStep)
	assert.True(t, fc.LateJoiner)
	assert.Equal(t, "mtr_freeze", fc.FreezePoint)
	assert.Equal(t, "mtr_run", fc.RunPoint)
	assert.Equal(t, "mtr_shutdown", fc.ShutdownPoint)
	assert.Equal(t, uint64(100), fc.MaxCycles)
	assert.Equal(t, 2, fc.Dispatch.Workers)
	assert.Equal(t, 64, fc.Dispatch.QueueSize)
	assert.Equal(t, 2*time.Second, fc.ReservationTimeout)
}
