package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ogurasousui/codex-compliance-audit/internal/platform/config"
)

const (
	applicationName = "compliance-audit"
	maxPingRetries  = 4
)

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
func BuildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if poolCfg.MinConns > poolCfg.MaxConns {
		return nil, fmt.Errorf("postgres: max_idle_conns (%d) exceeds max_open_conns (%d)", poolCfg.MinConns, poolCfg.MaxConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。起動直後の DB 待ちのため ping は数回再試行します。
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres")
	poolCfg.ConnConfig.Tracer = newQueryTracer(logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	ping := func() error { return pool.Ping(ctx) }
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxPingRetries), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Warn("database not ready", zap.Duration("retry_in", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

// newQueryTracer は pgx のトレースを zap に流します。クエリ本文は debug 有効時のみ出力します。
func newQueryTracer(logger *zap.Logger) *tracelog.TraceLog {
	level := tracelog.LogLevelWarn
	if logger.Core().Enabled(zapcore.DebugLevel) {
		level = tracelog.LogLevelInfo
	}
	return &tracelog.TraceLog{
		Logger:   tracelog.LoggerFunc(zapTraceLog(logger)),
		LogLevel: level,
	}
}

func zapTraceLog(logger *zap.Logger) func(context.Context, tracelog.LogLevel, string, map[string]any) {
	return func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		fields := make([]zap.Field, 0, len(data))
		for k, v := range data {
			fields = append(fields, zap.Any(k, v))
		}
		switch level {
		case tracelog.LogLevelError:
			logger.Error(msg, fields...)
		case tracelog.LogLevelWarn:
			logger.Warn(msg, fields...)
		default:
			logger.Debug(msg, fields...)
		}
	}
}
