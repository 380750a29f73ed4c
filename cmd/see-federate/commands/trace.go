// Package commands implements the trace subcommands of see-federate.
package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
)

// RunView prints every event of the trace file at path that matches filter.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] DIRECTION CATEGORY label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var label string
	switch {
	case event.Call != nil:
		label = event.Call.Name
	case event.StateChange != nil:
		label = "State"
	case event.Error != nil:
		label = "Error"
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [%s] %-5s %s %s\n", ts, shortenID(event.SessionID), event.Direction, event.Category, label)

	switch {
	case event.Call != nil:
		formatCallDetails(w, event.Call)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}

	fmt.Fprintln(w)
}

func formatCallDetails(w io.Writer, call *log.CallEvent) {
	if call.Class != 0 {
		fmt.Fprintf(w, "  Class: %d\n", call.Class)
	}
	if call.Instance != 0 {
		fmt.Fprintf(w, "  Instance: %d\n", call.Instance)
	}
	if call.Label != "" {
		fmt.Fprintf(w, "  Label: %s\n", call.Label)
	}
	if call.Time != nil {
		fmt.Fprintf(w, "  Time: %dus\n", *call.Time)
	}
	if len(call.Values) > 0 {
		handles := make([]uint64, 0, len(call.Values))
		for h := range call.Values {
			handles = append(handles, h)
		}
		slices.Sort(handles)
		parts := make([]string, len(handles))
		for i, h := range handles {
			parts[i] = fmt.Sprintf("%d:%dB", h, call.Values[h])
		}
		fmt.Fprintf(w, "  Values: %s\n", strings.Join(parts, " "))
	}
	if call.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*call.Duration))
	}
	if call.Result != "" {
		fmt.Fprintf(w, "  Result: %s\n", call.Result)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	entity := sc.Entity.String()
	if sc.Name != "" {
		entity += " " + sc.Name
	}
	fmt.Fprintf(w, "  Entity: %s\n", entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	case "local":
		return log.DirectionLocal, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in, out or local)", s)
	}
}

var categories = []log.Category{
	log.CategoryFederation,
	log.CategoryDeclaration,
	log.CategoryObject,
	log.CategoryInteraction,
	log.CategoryTime,
	log.CategorySync,
	log.CategoryState,
	log.CategoryError,
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	for _, c := range categories {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid category: %s", s)
}
