package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
	pgdb "github.com/ogurasousui/codex-compliance-audit/internal/platform/db/postgres"
)

const scheduleColumns = `id, name, type, format, criteria, frequency, time_of_day, active, recipients, created_by, created_at, last_run_at`

// ScheduleRepository は定期レポート設定と実行記録を扱います。
type ScheduleRepository struct {
	pool pgdb.Queryer
}

var _ report.Schedules = (*ScheduleRepository)(nil)

// NewScheduleRepository は ScheduleRepository を生成します。
func NewScheduleRepository(pool pgdb.Queryer) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// FindSchedule は ID で定期実行設定を取得します。
func (r *ScheduleRepository) FindSchedule(ctx context.Context, id int64) (*report.Schedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+scheduleColumns+`
          FROM report_schedules
         WHERE id = $1
    `, id)

	found, err := scanSchedule(row)
	if err != nil {
		return nil, translateSchedulePgError(err)
	}
	return found, nil
}

// ListActive は有効な設定を ID 順で返します。
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]*report.Schedule, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+scheduleColumns+`
          FROM report_schedules
         WHERE active
         ORDER BY id
    `)
	if err != nil {
		return nil, translateSchedulePgError(err)
	}
	defer rows.Close()

	schedules := make([]*report.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, translateSchedulePgError(err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateSchedulePgError(err)
	}
	return schedules, nil
}

// RecordRun は最終実行日時を更新し、実行履歴を 1 件追加します。
func (r *ScheduleRepository) RecordRun(ctx context.Context, scheduleID, reportID int64, at time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        WITH touched AS (
            UPDATE report_schedules
               SET last_run_at = $3
             WHERE id = $1
            RETURNING id
        )
        INSERT INTO report_runs (schedule_id, report_id, ran_at)
        SELECT id, $2, $3 FROM touched
    `, scheduleID, reportID, at.UTC())
	if err != nil {
		return translateSchedulePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return report.ErrScheduleNotFound
	}
	return nil
}

type recipientDocument struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"nombre"`
	Kind   string `json:"tipo"`
	Active bool   `json:"activo"`
}

func scanSchedule(row pgx.Row) (*report.Schedule, error) {
	var (
		s                    report.Schedule
		typ, format, freq    string
		criteria, recipients []byte
		lastRun              sql.NullTime
	)

	if err := row.Scan(
		&s.ID,
		&s.Name,
		&typ,
		&format,
		&criteria,
		&freq,
		&s.TimeOfDay,
		&s.Active,
		&recipients,
		&s.CreatedBy,
		&s.CreatedAt,
		&lastRun,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrScheduleNotFound
		}
		return nil, err
	}

	t, err := report.NewType(typ)
	if err != nil {
		return nil, err
	}
	f, err := report.NewFormat(format)
	if err != nil {
		return nil, err
	}
	s.Type = t
	s.Format = f
	s.Frequency = report.Frequency(freq)
	s.CreatedAt = s.CreatedAt.UTC()

	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &s.Criteria); err != nil {
			return nil, fmt.Errorf("postgres: decode schedule criteria: %w", err)
		}
	}
	if len(recipients) > 0 {
		var docs []recipientDocument
		if err := json.Unmarshal(recipients, &docs); err != nil {
			return nil, fmt.Errorf("postgres: decode recipients: %w", err)
		}
		for _, d := range docs {
			s.Recipients = append(s.Recipients, report.Recipient{ID: d.ID, Email: d.Email, Name: d.Name, Kind: d.Kind, Active: d.Active})
		}
	}
	if lastRun.Valid {
		at := lastRun.Time.UTC()
		s.LastRunAt = &at
	}
	return &s, nil
}

func translateSchedulePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return report.ErrScheduleNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return report.ErrReportNotFound
	}
	return err
}
