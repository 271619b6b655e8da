// Package logger provides the leveled logger shared by every component.
// Levels are off, normal (info/warn/error) and verbose (adds debug).
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level controls the verbosity of the logger.
type Level int

const (
	// LevelOff disables all output.
	LevelOff Level = iota
	// LevelNormal enables info, warn and error output.
	LevelNormal
	// LevelVerbose enables everything including debug.
	LevelVerbose
)

// ParseLevel maps "off", "normal" and "verbose" (plus the aliases "quiet",
// "info" and "debug") to a Level.
func ParseLevel(value string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off", "quiet", "none":
		return LevelOff, true
	case "normal", "info", "":
		return LevelNormal, true
	case "verbose", "debug":
		return LevelVerbose, true
	default:
		return LevelNormal, false
	}
}

// Logger is a leveled logger. Safe for concurrent use.
type Logger struct {
	mu     sync.RWMutex
	level  Level
	prefix string
	debug  *log.Logger
	info   *log.Logger
	warn   *log.Logger
	errLog *log.Logger
}

// New creates a logger writing to out; nil means os.Stderr.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	flags := log.Ltime | log.Lmicroseconds
	return &Logger{
		level:  level,
		debug:  log.New(out, "[DBG] ", flags),
		info:   log.New(out, "[INF] ", flags),
		warn:   log.New(out, "[WRN] ", flags),
		errLog: log.New(out, "[ERR] ", flags),
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return New(LevelOff, io.Discard)
}

// Named returns a logger sharing this one's outputs whose lines are
// prefixed with "name: ".
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	prefix := name + ": "
	if l.prefix != "" {
		prefix = l.prefix + name + ": "
	}
	return &Logger{
		level:  l.level,
		prefix: prefix,
		debug:  l.debug,
		info:   l.info,
		warn:   l.warn,
		errLog: l.errLog,
	}
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Debug logs at debug level (verbose only).
func (l *Logger) Debug(format string, args ...any) {
	l.output(LevelVerbose, func(l *Logger) *log.Logger { return l.debug }, format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) {
	l.output(LevelNormal, func(l *Logger) *log.Logger { return l.info }, format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.output(LevelNormal, func(l *Logger) *log.Logger { return l.warn }, format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) {
	l.output(LevelNormal, func(l *Logger) *log.Logger { return l.errLog }, format, args...)
}

func (l *Logger) output(min Level, pick func(*Logger) *log.Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level < min {
		return
	}
	pick(l).Output(3, l.prefix+fmt.Sprintf(format, args...))
}
