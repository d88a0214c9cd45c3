package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type txKey struct{}

type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TransactionManager は pgx を用いたトランザクション制御を提供します。
// 読み取りは既定で RepeatableRead のスナップショットで実行します。
type TransactionManager struct {
	pool     txStarter
	readIso  pgx.TxIsoLevel
	writeIso pgx.TxIsoLevel
	logger   *zap.Logger
}

// TxOption は TransactionManager の任意設定です。
type TxOption func(*TransactionManager)

// WithReadIsolation は読み取りトランザクションの分離レベルを変更します。
func WithReadIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TransactionManager) { m.readIso = level }
}

// WithWriteIsolation は書き込みトランザクションの分離レベルを変更します。空なら DB の既定値です。
func WithWriteIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TransactionManager) { m.writeIso = level }
}

func WithTxLogger(l *zap.Logger) TxOption {
	return func(m *TransactionManager) { m.logger = l }
}

// NewTransactionManager は TransactionManager を生成します。pool が nil の場合は nil を返し、
// nil の TransactionManager は fn をそのまま実行します。
func NewTransactionManager(pool txStarter, opts ...TxOption) *TransactionManager {
	if pool == nil {
		return nil
	}
	m := &TransactionManager{pool: pool, readIso: pgx.RepeatableRead, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// WithinReadOnly は読み取り専用トランザクションで fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.within(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: m.readIso}, fn)
}

// WithinReadWrite は読み書きトランザクションで fn を実行します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.within(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite, IsoLevel: m.writeIso}, fn)
}

func (m *TransactionManager) within(ctx context.Context, opts pgx.TxOptions, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("postgres: transaction function is required")
	}

	// 既存のトランザクションがあればそれに参加します。
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "postgres: begin tx")
	}

	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		finished = true
		if rbErr := m.rollback(ctx, tx); rbErr != nil {
			return errors.CombineErrors(err, rbErr)
		}
		return err
	}

	finished = true
	if err := tx.Commit(ctx); err != nil {
		commitErr := errors.Wrap(err, "postgres: commit")
		if !errors.Is(err, pgx.ErrTxClosed) {
			if rbErr := m.rollback(ctx, tx); rbErr != nil {
				return errors.CombineErrors(commitErr, rbErr)
			}
		}
		return commitErr
	}

	return nil
}

func (m *TransactionManager) rollback(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	m.logger.Warn("transaction rollback failed", zap.Error(err))
	return errors.Wrap(err, "postgres: rollback")
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// QueryerFromContext はコンテキスト内のトランザクションを返し、なければ fallback を返します。
func QueryerFromContext(ctx context.Context, fallback Queryer) Queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// Queryer は pgx.Tx と pgxpool.Pool に共通するクエリ実行インターフェースです。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
