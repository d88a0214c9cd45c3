package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ogurasousui/codex-compliance-audit/internal/platform/config"
)

func testDatabaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:            "localhost",
		Port:            15432,
		User:            "compliance",
		Password:        "p@ss:word",
		Name:            "compliance",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	poolCfg, err := BuildPoolConfig(testDatabaseConfig())
	if err != nil {
		t.Fatalf("BuildPoolConfig returned error: %v", err)
	}

	if poolCfg.MaxConns != 20 {
		t.Errorf("expected MaxConns 20, got %d", poolCfg.MaxConns)
	}
	if poolCfg.MinConns != 5 {
		t.Errorf("expected MinConns 5, got %d", poolCfg.MinConns)
	}
	if poolCfg.MaxConnLifetime != 30*time.Minute {
		t.Errorf("unexpected MaxConnLifetime: %v", poolCfg.MaxConnLifetime)
	}
	if poolCfg.MaxConnIdleTime != 10*time.Minute {
		t.Errorf("unexpected MaxConnIdleTime: %v", poolCfg.MaxConnIdleTime)
	}
	if poolCfg.ConnConfig.Database != "compliance" {
		t.Errorf("expected database compliance, got %s", poolCfg.ConnConfig.Database)
	}
	if poolCfg.ConnConfig.Password != "p@ss:word" {
		t.Errorf("expected escaped password to round-trip, got %q", poolCfg.ConnConfig.Password)
	}
	if got := poolCfg.ConnConfig.RuntimeParams["application_name"]; got != applicationName {
		t.Errorf("expected application_name %q, got %q", applicationName, got)
	}
}

func TestBuildPoolConfig_IdleExceedsOpen(t *testing.T) {
	t.Parallel()

	cfg := testDatabaseConfig()
	cfg.MaxOpenConns = 2
	cfg.MaxIdleConns = 3

	if _, err := BuildPoolConfig(cfg); err == nil {
		t.Fatal("expected error when max_idle_conns exceeds max_open_conns")
	}
}

func TestNewQueryTracer_Level(t *testing.T) {
	t.Parallel()

	debug := newQueryTracer(zap.New(zapcore.NewNopCore()))
	if debug.LogLevel != tracelog.LogLevelWarn {
		t.Errorf("expected warn level for a disabled logger, got %v", debug.LogLevel)
	}

	core, _ := observer.New(zap.DebugLevel)
	verbose := newQueryTracer(zap.New(core))
	if verbose.LogLevel != tracelog.LogLevelInfo {
		t.Errorf("expected info level when debug is enabled, got %v", verbose.LogLevel)
	}
}

func TestZapTraceLog_MapsLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	log := zapTraceLog(zap.New(core))

	log(context.Background(), tracelog.LogLevelError, "Query", map[string]any{"sql": "SELECT 1"})
	log(context.Background(), tracelog.LogLevelInfo, "Query", map[string]any{"sql": "SELECT 2"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel || entries[0].ContextMap()["sql"] != "SELECT 1" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.DebugLevel {
		t.Errorf("expected info trace to map to debug, got %s", entries[1].Level)
	}
}
