package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersAreNoopsByDefault(t *testing.T) {
	Set(nil)
	Info("nothing happens", String("k", "v"))
	Error("still nothing", ErrorField(errors.New("boom")))
}

func TestSetRoutesHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	defer Set(nil)

	Warn("best-effort delete failed", String("path", "/tmp/x"), ErrorField(errors.New("gone")))
	Debug("debug line", Int("n", 3))

	if logs.Len() != 2 {
		t.Fatalf("got %d entries, want 2", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zapcore.WarnLevel || entry.Message != "best-effort delete failed" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.ContextMap()["path"] != "/tmp/x" {
		t.Errorf("path field = %v", entry.ContextMap()["path"])
	}
}

func TestInitLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "folio.log")
	flush, err := InitLogger(Config{Level: "debug", OutputPath: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	defer Set(nil)
	Info("hello")
	flush()
	if !L().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
