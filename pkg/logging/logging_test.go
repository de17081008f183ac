package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},

		{"DEBUG", slog.LevelDebug},
		{"Warn", slog.LevelWarn},
		{"dEbUg", slog.LevelDebug},

		// Empty string defaults to Info
		{"", slog.LevelInfo},

		// Unrecognized defaults to Info
		{"trace", slog.LevelInfo},
		{"fatal", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText}, // unrecognized defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: FormatJSON, Output: &buf})

	log.Info("sweep complete", "endpoints", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "sweep complete" {
		t.Errorf("msg = %v, want %q", entry["msg"], "sweep complete")
	}
	if entry["endpoints"] != float64(3) {
		t.Errorf("endpoints = %v, want 3", entry["endpoints"])
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})

	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info entry should have been filtered at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn entry missing from output")
	}
}

func TestNewWithLevel(t *testing.T) {
	log := NewWithLevel("error")

	ctx := context.Background()
	if log.Enabled(ctx, slog.LevelWarn) {
		t.Error("warn should be filtered at error level")
	}
	if !log.Enabled(ctx, slog.LevelError) {
		t.Error("error level should be enabled")
	}
}

func TestNop(t *testing.T) {
	// Must not panic or write anywhere.
	Nop().Error("discarded", "key", "value")
}
