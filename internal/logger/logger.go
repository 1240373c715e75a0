package logger

import (
	"fmt"
	"io"
	"log"
	"log/syslog"
	"os"
	"strings"
)

// Logger defines the dboot logging contract.
// Implementations should support standard log levels.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Level is the minimum severity a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
}

// StdLogger wraps Go's standard logger to implement the dboot logging contract.
// Output goes to stderr so stdout stays free for command results.
type StdLogger struct {
	logger *log.Logger
	level  Level
}

// NewStdLogger creates a new StdLogger writing to stderr at info level.
func NewStdLogger() *StdLogger {
	return New(os.Stderr, LevelInfo)
}

// New creates a StdLogger writing to w, dropping messages below level.
func New(w io.Writer, level Level) *StdLogger {
	return &StdLogger{
		logger: log.New(w, "dboot: ", 0),
		level:  level,
	}
}

func (l *StdLogger) Info(msg string, args ...any) {
	l.printf(LevelInfo, "[INFO] "+msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...any) {
	l.printf(LevelWarn, "[WARN] "+msg, args...)
}

func (l *StdLogger) Error(msg string, args ...any) {
	l.printf(LevelError, "[ERROR] "+msg, args...)
}

func (l *StdLogger) Debug(msg string, args ...any) {
	l.printf(LevelDebug, "[DEBUG] "+msg, args...)
}

func (l *StdLogger) printf(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Printf(format, args...)
}

// SyslogLogger sends messages to the local syslog daemon.
type SyslogLogger struct {
	w     *syslog.Writer
	level Level
}

// NewSyslogLogger connects to syslog with the given tag.
func NewSyslogLogger(tag string, level Level) (*SyslogLogger, error) {
	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to syslog: %w", err)
	}
	return &SyslogLogger{w: w, level: level}, nil
}

func (l *SyslogLogger) Info(msg string, args ...any) {
	if l.level <= LevelInfo {
		_ = l.w.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *SyslogLogger) Warn(msg string, args ...any) {
	if l.level <= LevelWarn {
		_ = l.w.Warning(fmt.Sprintf(msg, args...))
	}
}

func (l *SyslogLogger) Error(msg string, args ...any) {
	_ = l.w.Err(fmt.Sprintf(msg, args...))
}

func (l *SyslogLogger) Debug(msg string, args ...any) {
	if l.level <= LevelDebug {
		_ = l.w.Debug(fmt.Sprintf(msg, args...))
	}
}

// Close disconnects from syslog.
func (l *SyslogLogger) Close() error {
	return l.w.Close()
}

// Discard drops every message. Used by tests and as a nil-safe fallback.
var Discard Logger = New(io.Discard, LevelError+1)

// OrDiscard returns l, or Discard when l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return Discard
	}
	return l
}

// Default provides a global default logger instance using Go's standard logger.
var Default Logger = NewStdLogger()
