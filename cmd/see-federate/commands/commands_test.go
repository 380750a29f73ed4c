package commands

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
)

func createTraceFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.cbor")
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		fl.Log(e)
	}
	require.NoError(t, fl.Close())
	return path
}

func sampleEvents() []log.Event {
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	grant := int64(2_000_000)
	took := 150 * time.Microsecond
	return []log.Event{
		{
			Timestamp: ts, SessionID: "0123456789abcdef", Direction: log.DirectionOut, Category: log.CategoryFederation,
			Federate: "lander", Federation: "SEE",
			Call: &log.CallEvent{Name: "JoinFederationExecution", Label: "lander", Duration: &took},
		},
		{
			Timestamp: ts.Add(time.Second), SessionID: "0123456789abcdef", Direction: log.DirectionOut, Category: log.CategoryObject,
			Call: &log.CallEvent{Name: "UpdateAttributeValues", Instance: 7, Values: map[uint64]int{2: 8, 1: 12}},
		},
		{
			Timestamp: ts.Add(2 * time.Second), SessionID: "0123456789abcdef", Direction: log.DirectionIn, Category: log.CategoryTime,
			Call: &log.CallEvent{Name: "TimeAdvanceGrant", Time: &grant},
		},
		{
			Timestamp: ts.Add(3 * time.Second), SessionID: "0123456789abcdef", Direction: log.DirectionLocal, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityExecution, OldState: "RUNNING", NewState: "SUSPENDED", Reason: "mtr_freeze"},
		},
		{
			Timestamp: ts.Add(4 * time.Second), SessionID: "0123456789abcdef", Direction: log.DirectionOut, Category: log.CategorySync,
			Call: &log.CallEvent{Name: "SynchronizationPointAchieved", Label: "mtr_run", Result: "not announced"},
		},
		{
			Timestamp: ts.Add(5 * time.Second), SessionID: "0123456789abcdef", Direction: log.DirectionLocal, Category: log.CategoryError,
			Error: &log.ErrorEventData{Message: "decode failed", Context: "ReceiveInteraction"},
		},
	}
}

func TestRunView(t *testing.T) {
	path := createTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{}, &buf))
	out := buf.String()

	assert.Contains(t, out, "[01234567] OUT   FEDERATION JoinFederationExecution")
	assert.Contains(t, out, "Duration: 150.000us")
	assert.Contains(t, out, "Values: 1:12B 2:8B")
	assert.Contains(t, out, "Time: 2000000us")
	assert.Contains(t, out, "RUNNING -> SUSPENDED")
	assert.Contains(t, out, "Reason: mtr_freeze")
	assert.Contains(t, out, "Result: not announced")
	assert.Contains(t, out, "Context: ReceiveInteraction")
}

func TestRunViewFiltered(t *testing.T) {
	path := createTraceFile(t, sampleEvents())

	dir := log.DirectionIn
	var buf bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{Direction: &dir}, &buf))
	assert.Contains(t, buf.String(), "TimeAdvanceGrant")
	assert.NotContains(t, buf.String(), "JoinFederationExecution")
}

func TestRunViewMissingFile(t *testing.T) {
	err := RunView(filepath.Join(t.TempDir(), "none.cbor"), log.Filter{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCollectStats(t *testing.T) {
	path := createTraceFile(t, sampleEvents())

	stats, err := CollectStats(path)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalEvents)
	assert.Equal(t, 3, stats.EventsByDirection[log.DirectionOut])
	assert.Equal(t, 1, stats.Calls["TimeAdvanceGrant"])
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 1, stats.Errors)

	require.Len(t, stats.Sessions, 1)
	session := stats.Sessions["0123456789abcdef"]
	assert.Equal(t, "lander", session.Federate)
	require.NotNil(t, session.LastTime)
	assert.Equal(t, int64(2_000_000), *session.LastTime)
}

func TestRunStats(t *testing.T) {
	path := createTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	out := buf.String()
	assert.Contains(t, out, "Total Events: 6")
	assert.Contains(t, out, "FEDERATION:")
	assert.Contains(t, out, "Federate: lander@SEE")
	assert.Contains(t, out, "Last grant: 2000000us")
	assert.Contains(t, out, "Failed calls: 1")
}

func TestParseFlags(t *testing.T) {
	d, err := ParseDirectionFlag("OUT")
	require.NoError(t, err)
	assert.Equal(t, log.DirectionOut, d)
	_, err = ParseDirectionFlag("sideways")
	assert.Error(t, err)

	c, err := ParseCategoryFlag("sync")
	require.NoError(t, err)
	assert.Equal(t, log.CategorySync, c)
	_, err = ParseCategoryFlag("bogus")
	assert.Error(t, err)
}
