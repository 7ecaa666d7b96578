// Package logging provides a small leveled key=value logger used across
// the matching engine and its store adapters.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger writes leveled log lines with an optional component name.
// The zero value is not usable; construct with New or Nop.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	silent    bool
}

// New creates a Logger writing to stderr at INFO level.
func New(component string) *Logger {
	return &Logger{
		output:    os.Stderr,
		minLevel:  LevelInfo,
		component: component,
	}
}

// Nop returns a logger that discards everything. Useful as a default for
// adapters whose callers did not supply a logger.
func Nop() *Logger {
	return &Logger{output: io.Discard, minLevel: LevelError, silent: true}
}

// WithComponent returns a copy of the logger scoped to a component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		silent:    l.silent,
	}
}

// SetLevel sets the minimum level emitted.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// SetOutput redirects log output, primarily for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// log writes one line: TIMESTAMP LEVEL [component] message key=value ...
// Field keys are sorted so output is deterministic.
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.silent || levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(string(level))
	if l.component != "" {
		b.WriteString(" [")
		b.WriteString(l.component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)

	for _, fieldMap := range fields {
		keys := make([]string, 0, len(fieldMap))
		for k := range fieldMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fieldMap[k])
		}
	}
	b.WriteByte('\n')

	io.WriteString(l.output, b.String())
}
