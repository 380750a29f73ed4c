package log

import (
	"github.com/sirupsen/logrus"
)

// LogrusAdapter mirrors trace events to a logrus logger. Errors are logged
// at Warn level, everything else at Debug.
type LogrusAdapter struct {
	logger logrus.FieldLogger
}

// NewLogrusAdapter creates an adapter writing to logger. A nil logger uses
// the logrus standard logger.
func NewLogrusAdapter(logger logrus.FieldLogger) *LogrusAdapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusAdapter{logger: logger}
}

// Log writes the event.
func (a *LogrusAdapter) Log(event Event) {
	fields := logrus.Fields{
		"session":   event.SessionID,
		"direction": event.Direction.String(),
		"category":  event.Category.String(),
	}
	if event.Federate != "" {
		fields["federate"] = event.Federate
	}

	msg := "trace"
	switch {
	case event.Call != nil:
		msg = event.Call.Name
		if event.Call.Instance != 0 {
			fields["instance"] = event.Call.Instance
		}
		if event.Call.Label != "" {
			fields["label"] = event.Call.Label
		}
		if event.Call.Time != nil {
			fields["time_us"] = *event.Call.Time
		}
		if event.Call.Result != "" {
			fields["result"] = event.Call.Result
		}
	case event.StateChange != nil:
		msg = event.StateChange.Entity.String() + " " + event.StateChange.NewState
		fields["old_state"] = event.StateChange.OldState
		if event.StateChange.Name != "" {
			fields["name"] = event.StateChange.Name
		}
	case event.Error != nil:
		a.logger.WithFields(fields).WithField("context", event.Error.Context).Warn(event.Error.Message)
		return
	}

	a.logger.WithFields(fields).Debug(msg)
}

var _ Logger = (*LogrusAdapter)(nil)
