// Package log provides structured logging for q-logic services.
//
// Loggers are constructed explicitly and passed by dependency injection;
// there is no package-level default logger. A typical setup:
//
//	logger := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	logger = logger.With(log.Component("dispatch"))
//	logger.Info("claimed item", log.Str("queue_id", id))
//
// Standard-library log output (used by Pebble) can be funneled through a
// Logger with RedirectStdLog. For slog interop, BaseLogger exposes a
// *slog.Logger backed by the same formatter and outputs.
package log
