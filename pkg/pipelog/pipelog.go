// Package pipelog provides the pipeline's structured logging, built on
// go.uber.org/zap (the logging library the corpus already standardizes
// on, see rupor-github-fb2cng/config/logger.go). It is deliberately
// simplified from that file's multi-core file+console tee down to one
// development/production logger constructor — the pipeline has no
// report-bundling or panic-capture concerns of its own.
package pipelog

import (
	"go.uber.org/zap"
)

// Logger wraps a zap.SugaredLogger so call sites can pass loosely-typed
// key/value pairs (spec §7: "Logging is emitted at the boundaries, not
// at every call site") without every caller importing zap directly.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a development-mode logger: human-readable console output,
// debug level enabled, stack traces on Warn+.
func New() *Logger {
	zl, err := zap.NewDevelopment()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{s: zl.Sugar()}
}

// NewProduction builds a JSON-encoded, info-level-and-above logger
// suitable for a deployed browser shell.
func NewProduction() *Logger {
	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{s: zl.Sugar()}
}

// Nop returns a logger that discards everything — used by tests that
// exercise a component without asserting on its log output.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }

// Sync flushes any buffered log entries. Call before process exit.
func (l *Logger) Sync() error { return l.s.Sync() }

// With returns a child logger with the given key/value pairs attached
// to every subsequent entry.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{s: l.s.With(kv...)}
}
