// Package logger provides levelled logging for kbrag.
// Messages go to stderr by default because stdout carries the MCP stdio
// transport. Debug output, including pipeline section headers, is only
// printed when the level is LevelDebug (the --verbose flag).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// String returns the upper-case level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name (debug, info, warn, warning, error) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose switches between debug output and the default warn level.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose returns true if debug messages are printed.
func IsVerbose() bool {
	return GetLevel() <= LevelDebug
}

// SetOutput sets the output writer for log messages.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// logf holds the write lock so concurrent messages never interleave.
func logf(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l >= level {
		fmt.Fprintf(output, "["+l.String()+"] "+format+"\n", args...)
	}
}

// Debug prints a message at debug level.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info prints an informational message.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	logf(LevelWarn, format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

// Section prints a section header when debug output is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if level <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
