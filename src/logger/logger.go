package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, ...).
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// Level orders log messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

// ParseLevel maps a config value to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ConsoleLogger writes human-readable logs to stdout/stderr.
// Errors always go to stderr; info and debug go to stdout.
type ConsoleLogger struct {
	level  Level
	out    io.Writer
	errOut io.Writer
}

func NewConsoleLogger() *ConsoleLogger {
	return NewConsoleLoggerWithLevel(LevelInfo)
}

func NewConsoleLoggerWithLevel(level Level) *ConsoleLogger {
	return &ConsoleLogger{level: level, out: os.Stdout, errOut: os.Stderr}
}

// NewWriterLogger sends every level to w. Used by commands whose stdout carries data.
func NewWriterLogger(w io.Writer, level Level) *ConsoleLogger {
	return &ConsoleLogger{level: level, out: w, errOut: w}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	if c.level <= LevelInfo {
		fmt.Fprintf(c.out, "[INFO] "+msg+"\n", args...)
	}
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(c.errOut, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if c.level <= LevelDebug {
		fmt.Fprintf(c.out, "[DEBUG] "+msg+"\n", args...)
	}
}

// SilentLogger discards all log messages.
// Used when running the TUI or the MCP stdio server, where stdout belongs to the display or the protocol.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
