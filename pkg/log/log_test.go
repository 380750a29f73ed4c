package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

// captureLogger records events in memory.
type captureLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureLogger) Log(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func ptr[T any](v T) *T { return &v }

func TestEventRoundTrip(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC),
		SessionID: "s-1",
		Direction: DirectionOut,
		Category:  CategoryObject,
		Federate:  "Earth",
		Call: &CallEvent{
			Name:     "UpdateAttributeValues",
			Class:    3,
			Instance: 42,
			Time:     ptr(int64(13_000_000)),
			Values:   map[uint64]int{1: 8, 2: 24},
			Tag:      []byte("tick"),
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !got.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", got.Timestamp, event.Timestamp)
	}
	if got.Call == nil {
		t.Fatal("Call is nil")
	}
	if got.Call.Instance != 42 || *got.Call.Time != 13_000_000 || got.Call.Values[2] != 24 {
		t.Errorf("Call: got %+v", got.Call)
	}
	if got.StateChange != nil || got.Error != nil {
		t.Error("unexpected payloads decoded")
	}

	again, _ := EncodeEvent(event)
	if !bytes.Equal(data, again) {
		t.Error("encoding is not deterministic")
	}
}

func TestEnumStrings(t *testing.T) {
	cases := []struct{ got, want string }{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{DirectionLocal.String(), "LOCAL"},
		{Direction(9).String(), "UNKNOWN"},
		{CategoryTime.String(), "TIME"},
		{CategorySync.String(), "SYNC"},
		{Category(99).String(), "UNKNOWN"},
		{StateEntityExecution.String(), "EXECUTION"},
		{StateEntitySyncPoint.String(), "SYNC_POINT"},
		{StateEntity(42).String(), "UNKNOWN"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "federate.ftrace")

	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	tr := NewTracer(fl)
	tr.SetIdentity("Earth", "SEE")

	tr.Call(DirectionOut, CategoryTime, CallEvent{Name: "TimeAdvanceRequest", Time: ptr(int64(1_000_000))})
	tr.Call(DirectionIn, CategoryTime, CallEvent{Name: "TimeAdvanceGrant", Time: ptr(int64(1_000_000))})
	tr.State(StateEntityExecution, "", "RUNNING", "SUSPENDED", "mtr_freeze")
	tr.Error("reflect", errors.New("invalid length"))

	if err := fl.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	fl.Log(Event{}) // ignored after close
	if fl.Written() != 4 {
		t.Errorf("Written: got %d, want 4", fl.Written())
	}

	// Appending keeps existing events.
	fl2, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	NewTracer(fl2).Call(DirectionOut, CategoryFederation, CallEvent{Name: "Resign"})
	fl2.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	all, err := r.All()
	r.Close()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("events: got %d, want 5", len(all))
	}
	if all[0].Federate != "Earth" || all[0].Federation != "SEE" || all[0].SessionID == "" {
		t.Errorf("identity not stamped: %+v", all[0])
	}
	if all[4].SessionID == all[0].SessionID {
		t.Error("sessions should differ")
	}

	r, err = NewFilteredReader(path, Filter{Direction: ptr(DirectionIn), Category: ptr(CategoryTime)})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()
	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Call.Name != "TimeAdvanceGrant" {
		t.Errorf("Call: got %q", ev.Call.Name)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestFilterMatch(t *testing.T) {
	now := time.Now()
	ev := Event{
		Timestamp: now,
		SessionID: "s",
		Federate:  "Moon",
		Call:      &CallEvent{Name: "ReflectAttributeValues", Class: 2, Instance: 9},
	}
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"session", Filter{SessionID: "s"}, true},
		{"other session", Filter{SessionID: "x"}, false},
		{"federate", Filter{Federate: "Mars"}, false},
		{"call", Filter{Call: "ReflectAttributeValues", Instance: 9}, true},
		{"other class", Filter{Class: 3}, false},
		{"before start", Filter{TimeStart: ptr(now.Add(time.Second))}, false},
		{"end exclusive", Filter{TimeEnd: ptr(now)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(ev); got != tt.want {
				t.Errorf("Match: got %v, want %v", got, tt.want)
			}
		})
	}

	if (&Filter{Call: "x"}).Match(Event{}) {
		t.Error("call filter must not match events without a call")
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewTracer(NewSlogAdapter(logger)).Call(DirectionIn, CategorySync, CallEvent{Name: "AnnounceSynchronizationPoint", Label: "mtr_run"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["call"] != "AnnounceSynchronizationPoint" {
		t.Errorf("call: got %v", entry["call"])
	}
	if entry["label"] != "mtr_run" {
		t.Errorf("label: got %v", entry["label"])
	}
	if entry["direction"] != "IN" {
		t.Errorf("direction: got %v", entry["direction"])
	}
}

func TestLogrusAdapter(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	tr := NewTracer(NewLogrusAdapter(logger))

	tr.State(StateEntityFederate, "Earth", "", "JOINED", "")
	tr.Error("join", errors.New("name in use"))

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].Message != "FEDERATE JOINED" || entries[0].Level != logrus.DebugLevel {
		t.Errorf("first entry: %q at %v", entries[0].Message, entries[0].Level)
	}
	if entries[1].Level != logrus.WarnLevel || entries[1].Data["context"] != "join" {
		t.Errorf("second entry: %+v", entries[1])
	}
}

func TestMultiLoggerAndNil(t *testing.T) {
	a, b := &captureLogger{}, &captureLogger{}
	m := NewMultiLogger(a, nil, b, NoopLogger{})
	if m.Len() != 3 {
		t.Errorf("Len: got %d, want 3", m.Len())
	}
	NewTracer(m).Call(DirectionOut, CategoryDeclaration, CallEvent{Name: "PublishObjectClassAttributes"})
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("fan out: got %d and %d", len(a.events), len(b.events))
	}

	var nilTracer *Tracer
	nilTracer.Call(DirectionOut, CategoryTime, CallEvent{Name: "x"})
	nilTracer.Error("x", errors.New("y"))
	if nilTracer.SessionID() != "" {
		t.Error("nil tracer has a session")
	}

	NewTracer(nil).State(StateEntityFederate, "", "", "RESIGNED", "")
}

func TestFileLoggerBadPath(t *testing.T) {
	if _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.ftrace")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
