package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" error ", LevelError},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConsoleLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		wantDebug bool
		wantInfo  bool
	}{
		{name: "debug", level: LevelDebug, wantDebug: true, wantInfo: true},
		{name: "info", level: LevelInfo, wantDebug: false, wantInfo: true},
		{name: "error", level: LevelError, wantDebug: false, wantInfo: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWriterLogger(&buf, tt.level)

			log.Debug("debug %d", 1)
			log.Info("info %s", "two")
			log.Error("error %v", 3)

			out := buf.String()
			if got := strings.Contains(out, "[DEBUG] debug 1"); got != tt.wantDebug {
				t.Errorf("debug written = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "[INFO] info two"); got != tt.wantInfo {
				t.Errorf("info written = %v, want %v", got, tt.wantInfo)
			}
			if !strings.Contains(out, "[ERROR] error 3") {
				t.Error("error message should always be written")
			}
		})
	}
}
