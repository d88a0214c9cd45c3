// Package scheduler は期限の来た定期レポートを一定間隔で実行します。
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

// Lister は有効な定期設定を返します。
type Lister interface {
	ListActive(ctx context.Context) ([]*report.Schedule, error)
}

// Runner は定期設定 1 件分のレポートを生成します。
type Runner interface {
	RunScheduled(ctx context.Context, scheduleID int64) (*report.Report, error)
}

// Clock は現在時刻を返します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// maxFailureDelay は失敗した設定を再実行するまでの待ち時間の上限です。
const maxFailureDelay = 24 * time.Hour

// failure は失敗が続いている設定の状態です。
type failure struct {
	attempts int
	retryAt  time.Time
}

// Scheduler はポーリング型の実行ループです。
// 失敗した設定は interval から倍々に延ばした時刻まで実行を見送ります。
type Scheduler struct {
	schedules  Lister
	runner     Runner
	clock      Clock
	logger     *zap.Logger
	interval   time.Duration
	maxRetries uint64
	newBackOff func() backoff.BackOff

	mu       sync.Mutex
	failures map[int64]failure
}

// Option は Scheduler の任意設定です。
type Option func(*Scheduler)

func WithClock(c Clock) Option { return func(s *Scheduler) { s.clock = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Scheduler) { s.logger = l } }

func WithInterval(d time.Duration) Option { return func(s *Scheduler) { s.interval = d } }

func WithMaxRetries(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.maxRetries = uint64(n)
		}
	}
}

// WithBackOff は再試行間隔の生成方法を差し替えます。
func WithBackOff(fn func() backoff.BackOff) Option { return func(s *Scheduler) { s.newBackOff = fn } }

// New は Scheduler を生成します。
func New(schedules Lister, runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		schedules:  schedules,
		runner:     runner,
		clock:      realClock{},
		logger:     zap.NewNop(),
		interval:   time.Minute,
		maxRetries: 3,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		failures:   make(map[int64]failure),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("scheduler")
	return s
}

// Run は ctx が終了するまで interval ごとに Tick を呼びます。
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	for {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("scheduler tick failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick は期限の来た設定をすべて実行し、成功件数を返します。
// 1 件の失敗で残りを止めることはせず、失敗はまとめて返します。
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	active, err := s.schedules.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("scheduler: list active: %w", err)
	}

	now := s.clock.Now().UTC()
	tickID := uuid.NewString()
	var (
		ran  int
		errs []error
	)
	for _, sc := range active {
		if !sc.IsDue(now) {
			s.clearFailure(sc.ID)
			continue
		}
		if err := ctx.Err(); err != nil {
			return ran, err
		}
		logger := s.logger.With(zap.String("tick_id", tickID), zap.Int64("schedule_id", sc.ID), zap.String("schedule", sc.Name))
		if f, ok := s.pendingFailure(sc.ID); ok && now.Before(f.retryAt) {
			logger.Debug("scheduled report backing off", zap.Int("attempts", f.attempts), zap.Time("retry_at", f.retryAt))
			continue
		}
		r, err := s.runWithRetry(ctx, sc.ID, logger)
		if err != nil {
			f := s.recordFailure(sc.ID, now)
			logger.Error("scheduled report failed", zap.Int("attempts", f.attempts), zap.Time("retry_at", f.retryAt), zap.Error(err))
			errs = append(errs, fmt.Errorf("schedule %d: %w", sc.ID, err))
			continue
		}
		s.clearFailure(sc.ID)
		ran++
		logger.Info("scheduled report generated", zap.Int64("report_id", r.ID()), zap.Int("rows", r.RowCount()))
	}
	return ran, errors.Join(errs...)
}

func (s *Scheduler) runWithRetry(ctx context.Context, scheduleID int64, logger *zap.Logger) (*report.Report, error) {
	var out *report.Report
	op := func() error {
		r, err := s.runner.RunScheduled(ctx, scheduleID)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = r
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		logger.Warn("retrying scheduled report", zap.Duration("wait", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Scheduler) pendingFailure(id int64) (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[id]
	return f, ok
}

// recordFailure は失敗回数を加算し、次に実行してよい時刻を決めます。
func (s *Scheduler) recordFailure(id int64, now time.Time) failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.failures[id]
	f.attempts++
	f.retryAt = now.Add(failureDelay(s.interval, f.attempts))
	s.failures[id] = f
	return f
}

func (s *Scheduler) clearFailure(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, id)
}

func failureDelay(interval time.Duration, attempts int) time.Duration {
	if interval <= 0 {
		interval = time.Minute
	}
	d := interval
	for i := 1; i < attempts && d < maxFailureDelay; i++ {
		d *= 2
	}
	return min(d, maxFailureDelay)
}

// retryable は外部依存の失敗だけを再試行対象とします。
func retryable(err error) bool {
	kind, ok := domainerr.KindOf(err)
	if !ok {
		return true
	}
	return kind == domainerr.KindDependency
}
