package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInitializeWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "json")
	defer Initialize("info", "text")

	Info("catalog refreshed", "cars", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "catalog refreshed" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if entry["cars"] != float64(3) {
		t.Errorf("unexpected cars attr %v", entry["cars"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "warn", "text")
	defer Initialize("info", "text")

	Info("hidden")
	Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record must be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestExternalServiceResult(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "error", "text")
	defer Initialize("info", "text")

	ExternalServiceResult("airtable", "create_order", nil)
	if buf.Len() != 0 {
		t.Fatalf("success must be logged at debug level, got %q", buf.String())
	}

	ExternalServiceResult("airtable", "create_order", errors.New("boom"))
	if !strings.Contains(buf.String(), "boom") || !strings.Contains(buf.String(), "airtable") {
		t.Errorf("failure record incomplete: %q", buf.String())
	}
}
