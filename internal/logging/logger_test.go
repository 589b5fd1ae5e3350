package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })
	return logs
}

func TestCategoriesAreNamedLoggers(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Boot("boot %d", 1)
	Extract("extract %s", "x")
	API("api call")
	Export("export done")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	want := []string{"boot", "extract", "api", "export"}
	for i, e := range entries {
		if e.LoggerName != want[i] {
			t.Errorf("entry %d: expected logger %q, got %q", i, want[i], e.LoggerName)
		}
	}
	if entries[0].Message != "boot 1" {
		t.Errorf("unexpected message: %q", entries[0].Message)
	}
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.WarnLevel)

	APIDebug("hidden")
	API("hidden")
	APIWarn("shown")
	APIError("shown too")

	if got := logs.Len(); got != 2 {
		t.Fatalf("expected 2 entries at warn+, got %d", got)
	}
}

func TestNoopBeforeInitialize(t *testing.T) {
	Set(nil)
	// Must not panic.
	Boot("nothing")
	StartTimer(CategoryAPI, "noop").Stop()
}

func TestInitializeWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	if err := Initialize(Options{Level: "debug", Format: "json", File: path}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { Set(nil) })

	API("hello %d", 42)
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "hello 42") {
		t.Errorf("log file missing message: %s", out)
	}
	if !strings.Contains(out, `"logger":"api"`) {
		t.Errorf("log file missing category name: %s", out)
	}
}

func TestInitializeRejectsBadOptions(t *testing.T) {
	if err := Initialize(Options{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if err := Initialize(Options{Format: "xml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestTimerThreshold(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	timer := StartTimer(CategoryExport, "write")
	timer.start = time.Now().Add(-time.Second)
	timer.StopWithThreshold(10 * time.Millisecond)

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if entries[0].LoggerName != "export" {
		t.Errorf("expected export logger, got %q", entries[0].LoggerName)
	}
}
