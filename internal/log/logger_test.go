package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf, Level: slog.LevelDebug}).WithComponent(ComponentLedger)
	logger.Info("hello", FieldLedgerID, "b1")

	line := buf.String()
	if strings.Count(line, `"component"`) != 1 {
		t.Fatalf("component should appear once: %s", line)
	}
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec[FieldComponent] != ComponentLedger || rec[FieldLedgerID] != "b1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: slog.LevelWarn})
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", got.Component())
	}

	logger := New(Config{Component: "custom", Output: &bytes.Buffer{}})
	var seen *Logger
	inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	})
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(inner))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if seen == nil || seen.Component() != "custom" {
		t.Fatalf("middleware did not propagate logger: %+v", seen)
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))
	req := httptest.NewRequest("GET", "/budgets", nil)

	sl.LogHTTPEnd(context.Background(), req, 503, 12, "1.2.3.4")
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Fatalf("5xx should log at error: %s", buf.String())
	}
	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), OpExport, nil)
	if !strings.Contains(buf.String(), `"error":"bad"`) || !strings.Contains(buf.String(), `"operation":"export"`) {
		t.Fatalf("unexpected error record: %s", buf.String())
	}
}
