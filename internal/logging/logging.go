// Package logging supplies the diagnostics sink the protocol core treats
// as an external collaborator: a small Logger interface, a logrus-backed
// implementation, and a no-op default.
package logging

import "github.com/sirupsen/logrus"

// Fields is a structured set of key/value pairs attached to a log line.
type Fields map[string]interface{}

// Logger is the diagnostics sink the engine calls into. It never receives
// anything the caller wouldn't also see returned as an error; it exists
// purely for observability.
type Logger interface {
	Debugf(format string, fields Fields, args ...interface{})
	Infof(format string, fields Fields, args ...interface{})
	Warnf(format string, fields Fields, args ...interface{})
	Errorf(format string, fields Fields, args ...interface{})
}

// noop discards everything; it is the engine's zero-value default so a
// *Session can be used without wiring a logger at all.
type noop struct{}

func (noop) Debugf(string, Fields, ...interface{}) {}
func (noop) Infof(string, Fields, ...interface{})  {}
func (noop) Warnf(string, Fields, ...interface{})  {}
func (noop) Errorf(string, Fields, ...interface{}) {}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noop{} }

// logrusLogger adapts *logrus.Logger to the Logger interface.
type logrusLogger struct {
	entry *logrus.Logger
}

// NewLogrus wraps l (or logrus.StandardLogger() if l is nil) as a Logger.
func NewLogrus(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusLogger{entry: l}
}

func (l *logrusLogger) Debugf(format string, fields Fields, args ...interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Debugf(format, args...)
}

func (l *logrusLogger) Infof(format string, fields Fields, args ...interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Infof(format, args...)
}

func (l *logrusLogger) Warnf(format string, fields Fields, args ...interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Warnf(format, args...)
}

func (l *logrusLogger) Errorf(format string, fields Fields, args ...interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Errorf(format, args...)
}
