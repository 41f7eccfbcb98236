package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formbridge/pkg/bridge"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestObserver_LevelsByOutcome(t *testing.T) {
	var buf bytes.Buffer
	observer := Observer(New(&buf, "debug", "json"))

	observer.ObserveRequest(bridge.Event{Method: "GET", Path: "/health", RequestID: "r1", Status: 200, Outcome: bridge.OutcomeSuccess, Duration: time.Millisecond})
	observer.ObserveRequest(bridge.Event{Method: "GET", Path: "/missing", RequestID: "r2", Status: 404, Outcome: bridge.OutcomeHTTPError})
	observer.ObserveRequest(bridge.Event{Method: "POST", Path: "/down", RequestID: "r3", Outcome: bridge.OutcomeTransportError, Err: errors.New("dial tcp: refused")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %q", len(lines), buf.String())
	}
	wantLevels := []string{"debug", "warn", "error"}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %d is not json: %v", i, err)
		}
		if entry["level"] != wantLevels[i] {
			t.Fatalf("line %d level = %v, want %s", i, entry["level"], wantLevels[i])
		}
		if entry["message"] != "backend request" {
			t.Fatalf("line %d message = %v", i, entry["message"])
		}
	}
	if !strings.Contains(lines[2], `"error":"dial tcp: refused"`) {
		t.Fatalf("expected transport error in log, got %s", lines[2])
	}
}

func TestNew_InfoLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
