package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf}).With("dispatcher")

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %s", out)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, out)
	}
	if entry["component"] != "dispatcher" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["service"] != "tripmate" {
		t.Errorf("service = %v", entry["service"])
	}
}

func TestLogToolCall(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Output: &buf})

	log.LogToolCall("get_weather", "call-1", 15*time.Millisecond, nil)
	log.LogToolCall("create_trip", "call-2", time.Millisecond, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[0], "get_weather") {
		t.Errorf("unexpected success line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"level":"warn"`) || !strings.Contains(lines[1], "boom") {
		t.Errorf("unexpected failure line: %s", lines[1])
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error().Msg("nothing")
}
