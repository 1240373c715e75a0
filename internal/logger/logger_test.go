package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &StdLogger{
		logger: log.New(&buf, "", 0),
	}

	tests := []struct {
		name     string
		fn       func()
		expected string
	}{
		{
			name:     "Info",
			fn:       func() { l.Info("test message") },
			expected: "[INFO] test message",
		},
		{
			name:     "Warn",
			fn:       func() { l.Warn("warning message") },
			expected: "[WARN] warning message",
		},
		{
			name:     "Error",
			fn:       func() { l.Error("error message") },
			expected: "[ERROR] error message",
		},
		{
			name:     "Debug",
			fn:       func() { l.Debug("debug message") },
			expected: "[DEBUG] debug message",
		},
		{
			name:     "Info with args",
			fn:       func() { l.Info("status %s written at slot %d", "0x8001", 42) },
			expected: "[INFO] status 0x8001 written at slot 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn()
			got := strings.TrimSpace(buf.String())
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")

	got := strings.TrimSpace(buf.String())
	want := "dboot: [WARN] shown\ndboot: [ERROR] shown"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "", want: LevelInfo},
		{in: "WARNING", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	if Default == nil {
		t.Error("Default logger should not be nil")
	}
	if OrDiscard(nil) != Discard {
		t.Error("OrDiscard(nil) should return Discard")
	}

	Default.Info("test")
}
