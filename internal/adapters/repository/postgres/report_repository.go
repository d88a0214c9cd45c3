package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
	pgdb "github.com/ogurasousui/codex-compliance-audit/internal/platform/db/postgres"
)

const reportColumns = `id, type, format, created_at, requested_by, columns, rows, row_count, criteria, file_path, file_url, file_size, file_size_bytes`

// ReportRepository は生成済みレポートを PostgreSQL に保存します。
type ReportRepository struct {
	pool pgdb.Queryer
}

var _ report.Store = (*ReportRepository)(nil)

// NewReportRepository は ReportRepository を生成します。
func NewReportRepository(pool pgdb.Queryer) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Save はレポートを挿入し、採番済み ID を持つレポートを返します。
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) (*report.Report, error) {
	rec := rep.Record()

	columns, err := json.Marshal(rec.Columns)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode columns: %w", err)
	}
	rows, err := json.Marshal(rec.Rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode rows: %w", err)
	}
	criteria, err := json.Marshal(rec.Criteria)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode criteria: %w", err)
	}

	var path, url, size sql.NullString
	var sizeBytes sql.NullInt64
	if rec.File != nil {
		path = sql.NullString{String: rec.File.Path, Valid: true}
		url = sql.NullString{String: rec.File.URL, Valid: true}
		size = sql.NullString{String: rec.File.Size, Valid: true}
		sizeBytes = sql.NullInt64{Int64: rec.File.SizeBytes, Valid: true}
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var id int64
	err = exec.QueryRow(ctx, `
        INSERT INTO reports (type, format, created_at, requested_by, columns, rows, row_count, criteria, file_path, file_url, file_size, file_size_bytes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `,
		rec.Type,
		rec.Format,
		rec.CreatedAt,
		rec.RequestedBy,
		columns,
		rows,
		rec.RowCount,
		criteria,
		path,
		url,
		size,
		sizeBytes,
	).Scan(&id)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return rep.WithID(id), nil
}

// FindByID は ID でレポートを取得します。
func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*report.Report, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+reportColumns+`
          FROM reports
         WHERE id = $1
    `, id)

	found, err := scanReport(row)
	if err != nil {
		return nil, translateReportPgError(err)
	}
	return found, nil
}

func scanReport(row pgx.Row) (*report.Report, error) {
	var (
		rec                 report.Record
		columns, rows, crit []byte
		path, url, size     sql.NullString
		sizeBytes           sql.NullInt64
	)

	if err := row.Scan(
		&rec.ID,
		&rec.Type,
		&rec.Format,
		&rec.CreatedAt,
		&rec.RequestedBy,
		&columns,
		&rows,
		&rec.RowCount,
		&crit,
		&path,
		&url,
		&size,
		&sizeBytes,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrReportNotFound
		}
		return nil, err
	}

	if len(columns) > 0 {
		if err := json.Unmarshal(columns, &rec.Columns); err != nil {
			return nil, fmt.Errorf("postgres: decode columns: %w", err)
		}
	}
	if len(rows) > 0 {
		if err := json.Unmarshal(rows, &rec.Rows); err != nil {
			return nil, fmt.Errorf("postgres: decode rows: %w", err)
		}
		for _, r := range rec.Rows {
			normalizeRow(r)
		}
	}
	if len(crit) > 0 {
		var c query.Criteria
		if err := json.Unmarshal(crit, &c); err != nil {
			return nil, fmt.Errorf("postgres: decode criteria: %w", err)
		}
		rec.Criteria = c
	}
	if path.Valid {
		rec.File = &report.File{
			Path:      path.String,
			URL:       url.String,
			Size:      size.String,
			SizeBytes: sizeBytes.Int64,
		}
	}

	return report.Rehydrate(rec)
}

// normalizeRow は JSON 復元で float64 になった整数値を int に戻します。
func normalizeRow(r report.Row) {
	for k, v := range r {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
			r[k] = int(f)
		}
	}
}

func translateReportPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return report.ErrReportNotFound
	}
	return err
}
