package main

import (
	"io"
	"log/slog"

	"github.com/sirupsen/logrus"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/config"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
)

// newLogger builds the operational logger for cfg.Log.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Log.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// tracing owns the trace sinks of one run.
type tracing struct {
	file   *log.FileLogger
	logger log.Logger
}

// newTracing opens the trace file and, for the logrus format, mirrors
// trace events through logrus. It returns a nil logger when tracing is off.
func newTracing(cfg *config.Config, w io.Writer) (*tracing, error) {
	var (
		t     tracing
		sinks []log.Logger
	)

	if cfg.Log.TraceFile != "" {
		fl, err := log.NewFileLogger(cfg.Log.TraceFile)
		if err != nil {
			return nil, err
		}
		t.file = fl
		sinks = append(sinks, fl)
	}

	if cfg.Log.Format == "logrus" {
		lr := logrus.New()
		lr.SetOutput(w)
		lr.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			lr.SetLevel(level)
		}
		sinks = append(sinks, log.NewLogrusAdapter(lr))
	}

	switch len(sinks) {
	case 0:
	case 1:
		t.logger = sinks[0]
	default:
		t.logger = log.NewMultiLogger(sinks...)
	}
	return &t, nil
}

// Close flushes and closes the trace file.
func (t *tracing) Close() error {
	if t.file == nil {
		return nil
	}
	return t.file.Close()
}
