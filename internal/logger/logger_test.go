package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// capture swaps the default logger for one writing into a buffer. The
// once guard is satisfied first so Get never re-initializes over it.
func capture() *bytes.Buffer {
	once.Do(func() {})
	var buf bytes.Buffer
	defaultLogger = zerolog.New(&buf)
	return &buf
}

func TestHelpersWriteStructuredJSON(t *testing.T) {
	buf := capture()

	Info("article published", "slug", "how-to-wax-a-surfboard", "seo_score", 82)
	Warn("tenant schema missing optional column", "column", "read_time")
	Error("publish failed", errors.New("boom"), "website_id", "w1")
	Debug("article scored")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d:\n%s", len(lines), buf.String())
	}

	var entries []map[string]any
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, line)
		}
		entries = append(entries, entry)
	}

	if entries[0]["level"] != "info" || entries[0]["message"] != "article published" {
		t.Errorf("info entry = %v", entries[0])
	}
	if entries[0]["slug"] != "how-to-wax-a-surfboard" || entries[0]["seo_score"] != float64(82) {
		t.Errorf("info fields = %v", entries[0])
	}
	if entries[1]["level"] != "warn" || entries[1]["column"] != "read_time" {
		t.Errorf("warn entry = %v", entries[1])
	}
	if entries[2]["level"] != "error" || entries[2]["error"] != "boom" || entries[2]["website_id"] != "w1" {
		t.Errorf("error entry = %v", entries[2])
	}
	if entries[3]["level"] != "debug" {
		t.Errorf("debug entry = %v", entries[3])
	}
}

func TestFields(t *testing.T) {
	got := fields([]any{"a", 1, "b", "two"})
	if len(got) != 2 || got["a"] != 1 || got["b"] != "two" {
		t.Errorf("fields = %v", got)
	}

	// Trailing value without a key is dropped.
	got = fields([]any{"a", 1, "dangling"})
	if len(got) != 1 || got["a"] != 1 {
		t.Errorf("fields with dangling arg = %v", got)
	}

	// Non-string keys are skipped.
	got = fields([]any{42, "x", "b", 2})
	if len(got) != 1 || got["b"] != 2 {
		t.Errorf("fields with non-string key = %v", got)
	}

	if fields(nil) != nil {
		t.Error("fields(nil) should be nil")
	}
}
