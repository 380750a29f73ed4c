// Package log provides a machine-readable trace of a federate's exchange
// with the runtime.
//
// It is separate from operational logging (slog). Every runtime request,
// every callback and every federate state change can be captured as an
// Event and written to a CBOR file, mirrored to slog or logrus, or both:
//
//	trace, _ := log.NewFileLogger("federate.ftrace")
//	cfg.Trace = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), trace)
//
// Trace files are a plain sequence of CBOR-encoded events. Reader streams
// them back, optionally through a Filter.
package log
