package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLoggerAddsServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{ServiceName: "vibesrm", Environment: "test", Level: "debug", Output: &buf})
	logger.Debug("hello", "k", 1)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["service"] != "vibesrm" || line["env"] != "test" || line["msg"] != "hello" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{ServiceName: "vibesrm", Level: "warn", Output: &buf})
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("unknown levels should default to info")
	}
}
