// Package logger provides the leveled logger shared by the drafting and
// deckbuilding engines.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger provides leveled logging. A nil *Logger is valid and discards everything.
type Logger struct {
	debugEnabled bool
	out          io.Writer
	mu           sync.Mutex
}

// New creates a logger writing to stdout with the specified debug mode.
func New(debugEnabled bool) *Logger {
	return NewWithWriter(debugEnabled, os.Stdout)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(debugEnabled bool, w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{
		debugEnabled: debugEnabled,
		out:          w,
	}
}

// Debug logs a debug message (only if debug mode is enabled).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l == nil || !l.debugEnabled {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	l.write(fmt.Sprintf("[DEBUG] %s - %s\n", timestamp, fmt.Sprintf(format, args...)))
}

// Info logs an informational message (always shown).
func (l *Logger) Info(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.write(fmt.Sprintf("[INFO] %s\n", fmt.Sprintf(format, args...)))
}

// Warn logs a warning message (always shown).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.write(fmt.Sprintf("[WARN] %s\n", fmt.Sprintf(format, args...)))
}

// Error logs an error message (always shown).
func (l *Logger) Error(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.write(fmt.Sprintf("[ERROR] %s\n", fmt.Sprintf(format, args...)))
}

// IsDebugEnabled returns whether debug mode is enabled.
func (l *Logger) IsDebugEnabled() bool {
	return l != nil && l.debugEnabled
}

// Concurrent trials share one logger, so whole lines are written under a lock.
func (l *Logger) write(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, line)
}
