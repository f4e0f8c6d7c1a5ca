package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Output: &buf})

	log.WithComponent("carrier").CarrierRenew("eth0.10", 42)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON record, got %q: %v", buf.String(), err)
	}

	if record["msg"] != "eth0.10: carrier detected, requested DHCP renew" {
		t.Errorf("Unexpected message: %v", record["msg"])
	}
	if record["component"] != "carrier" {
		t.Errorf("Expected component field, got %v", record["component"])
	}
	if record["pid"] != float64(42) {
		t.Errorf("Expected pid 42, got %v", record["pid"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})

	log.RouteDump("inet", "main", 10, 8)
	if buf.Len() != 0 {
		t.Errorf("Debug record should be filtered, got %q", buf.String())
	}

	log.TransportFailure("receive", errors.New("no buffer space available"))
	if !strings.Contains(buf.String(), "no buffer space available") {
		t.Errorf("Expected error record, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("dropped")
	log.Performance("show", map[string]interface{}{"rendered": 1})
}
