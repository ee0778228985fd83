package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stderr = w
	fn()
	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLoggerInfoEmitsJSONWithFields(t *testing.T) {
	logger := New(LevelInfo).WithFields("component", "auth")

	out := captureStderr(t, func() {
		logger.Info("resolved component", "version", "1.2.0")
	})

	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\n%s", err, out)
	}
	if entry["message"] != "resolved component" {
		t.Errorf("expected message field, got %v", entry["message"])
	}
	if entry["component"] != "auth" {
		t.Errorf("expected component field from WithFields, got %v", entry["component"])
	}
	if entry["version"] != "1.2.0" {
		t.Errorf("expected version field from call site, got %v", entry["version"])
	}
}

func TestLoggerDebugSuppressedAboveDebugLevel(t *testing.T) {
	logger := New(LevelInfo)
	out := captureStderr(t, func() {
		logger.Debug("should not appear")
	})
	if out != "" {
		t.Errorf("expected no output at info level, got %q", out)
	}
}

func TestLoggerErrorIncludesErrorField(t *testing.T) {
	logger := New(LevelInfo)
	out := captureStderr(t, func() {
		logger.Error("resolution failed", errExample)
	})

	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v\n%s", err, out)
	}
	if entry["error"] != errExample.Error() {
		t.Errorf("expected error field %q, got %v", errExample.Error(), entry["error"])
	}
}

var errExample = errExampleType("integrity mismatch")

type errExampleType string

func (e errExampleType) Error() string { return string(e) }
