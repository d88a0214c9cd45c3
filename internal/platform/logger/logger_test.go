package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/ogurasousui/codex-compliance-audit/internal/platform/config"
)

func TestNew_Level(t *testing.T) {
	t.Parallel()

	l, err := New(config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn must be enabled")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LogConfig{Level: "verbose", Format: "json"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
