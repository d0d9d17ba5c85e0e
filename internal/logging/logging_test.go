package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "debug", Format: "json", Output: &buf})
	defer Setup(Options{})

	InfoWithComponent(ComponentDither, "rows finished", "rows", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["component"] != ComponentDither {
		t.Errorf("component = %v", record["component"])
	}
	if record["msg"] != "rows finished" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["rows"] != float64(3) {
		t.Errorf("rows = %v", record["rows"])
	}
}

func TestSetupTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "warn", Output: &buf})
	defer Setup(Options{})

	Info("hidden")
	Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("warn record missing: %s", out)
	}
}
