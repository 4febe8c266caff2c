package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerNotNil(t *testing.T) {
	if NewLogger(Config{}) == nil {
		t.Fatal("expected logger to be non-nil")
	}
}

func TestNewLevels(t *testing.T) {
	logger := New(&bytes.Buffer{}, Config{Level: "warn"})
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn")
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("warn should be enabled")
	}
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unknown level should fall back to info")
	}
}

func TestJSONFormatAndHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "debug", Format: "JSON"})

	Debug(logger, "stage done", FieldStage, "build", FieldCount, 3)
	Error(logger, "load failed", errors.New("boom"), FieldInput, "dump.json")

	out := buf.String()
	for _, want := range []string{`"msg":"stage done"`, `"stage":"build"`, `"count":3`, `"error":"boom"`, `"input":"dump.json"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestHelpersIgnoreNilLogger(t *testing.T) {
	Debug(nil, "x")
	Info(nil, "x")
	Warn(nil, "x")
	Error(nil, "x", errors.New("boom"))
}
