package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

var (
	reportColumnNames   = []string{"id", "type", "format", "created_at", "requested_by", "columns", "rows", "row_count", "criteria", "file_path", "file_url", "file_size", "file_size_bytes"}
	scheduleColumnNames = []string{"id", "name", "type", "format", "criteria", "frequency", "time_of_day", "active", "recipients", "created_by", "created_at", "last_run_at"}
)

func TestReportRepository_Save(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewReportRepository(mock)

	typ, _ := report.NewType(report.TypeMembers)
	format, _ := report.NewFormat(report.FormatCSV)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rep, err := report.New(report.Params{
		Type:        typ,
		Format:      format,
		CreatedAt:   created,
		RequestedBy: 4,
		Columns:     typ.Columns(),
		Rows:        []report.Row{{report.ColID: 1}},
	})
	if err != nil {
		t.Fatalf("report.New returned error: %v", err)
	}
	if err := rep.AttachFile(report.File{Path: rep.StoragePath(), URL: "https://files/x.csv", SizeBytes: 2048}); err != nil {
		t.Fatalf("AttachFile returned error: %v", err)
	}

	mock.ExpectQuery(`INSERT INTO reports`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(31)))

	saved, err := repo.Save(context.Background(), rep)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if saved.ID() != 31 {
		t.Fatalf("expected id 31, got %d", saved.ID())
	}
	if rep.ID() != 0 {
		t.Fatalf("original report must stay unsaved")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportRepository_FindByID(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewReportRepository(mock)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM reports\s+WHERE id = \$1`).
		WithArgs(int64(31)).
		WillReturnRows(pgxmock.NewRows(reportColumnNames).AddRow(
			int64(31), report.TypeMembers, report.FormatCSV, created, int64(4),
			[]byte(`["ID","Nombre"]`),
			[]byte(`[{"ID":1,"Nombre":"Ana"}]`),
			1,
			[]byte(`{"texto":"ruiz","soloActivos":true}`),
			"/reportes/integrantes/2025-03-01_integrantes.csv", "https://files/x.csv", "2.0 KB", int64(2048),
		))

	found, err := repo.FindByID(context.Background(), 31)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if found.Type().String() != report.TypeMembers || found.RowCount() != 1 {
		t.Fatalf("unexpected report: %+v", found.Record())
	}
	if got := found.Rows()[0][report.ColID]; got != 1 {
		t.Fatalf("expected integer id cell, got %#v", got)
	}
	want := query.Criteria{Term: "ruiz", ActiveOnly: true}
	if c := found.Criteria(); c.Term != want.Term || c.ActiveOnly != want.ActiveOnly {
		t.Fatalf("unexpected criteria: %+v", c)
	}
	file, ok := found.File()
	if !ok || file.SizeBytes != 2048 {
		t.Fatalf("expected attached file, got %+v", file)
	}
}

func TestReportRepository_FindByID_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewReportRepository(mock)

	mock.ExpectQuery(`FROM reports`).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows(reportColumnNames))

	if _, err := repo.FindByID(context.Background(), 8); !errors.Is(err, report.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestScheduleRepository_ListActive(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewScheduleRepository(mock)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lastRun := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM report_schedules\s+WHERE active`).
		WillReturnRows(pgxmock.NewRows(scheduleColumnNames).
			AddRow(int64(1), "Mensual RH", report.TypeFull, report.FormatExcel, []byte(`{"soloActivos":true}`), "mensual", "08:00", true,
				[]byte(`[{"id":1,"email":"rh@empresa.com","nombre":"RH","tipo":"usuario","activo":true}]`), int64(2), created, lastRun).
			AddRow(int64(2), "Diario", report.TypeMembers, report.FormatCSV, []byte(nil), "diario", "07:30", true,
				[]byte(nil), int64(2), created, nil))

	schedules, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive returned error: %v", err)
	}
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(schedules))
	}
	first := schedules[0]
	if first.Frequency != report.FrequencyMonthly || !first.Criteria.ActiveOnly {
		t.Fatalf("unexpected first schedule: %+v", first)
	}
	if len(first.ActiveRecipients()) != 1 || first.LastRunAt == nil || !first.LastRunAt.Equal(lastRun) {
		t.Fatalf("unexpected recipients or last run: %+v", first)
	}
	if schedules[1].LastRunAt != nil {
		t.Fatalf("expected nil last run for the second schedule")
	}
}

func TestScheduleRepository_FindSchedule_NotFound(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewScheduleRepository(mock)

	mock.ExpectQuery(`FROM report_schedules\s+WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(scheduleColumnNames))

	if _, err := repo.FindSchedule(context.Background(), 3); !errors.Is(err, report.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestScheduleRepository_RecordRun(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("records", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		repo := NewScheduleRepository(mock)
		mock.ExpectExec(`INSERT INTO report_runs`).
			WithArgs(int64(1), int64(31), at).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		if err := repo.RecordRun(context.Background(), 1, 31, at); err != nil {
			t.Fatalf("RecordRun returned error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("missing schedule", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		repo := NewScheduleRepository(mock)
		mock.ExpectExec(`INSERT INTO report_runs`).
			WithArgs(int64(9), int64(31), at).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		if err := repo.RecordRun(context.Background(), 9, 31, at); !errors.Is(err, report.ErrScheduleNotFound) {
			t.Fatalf("expected ErrScheduleNotFound, got %v", err)
		}
	})

	t.Run("missing report", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		repo := NewScheduleRepository(mock)
		mock.ExpectExec(`INSERT INTO report_runs`).
			WithArgs(int64(1), int64(404), at).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		if err := repo.RecordRun(context.Background(), 1, 404, at); !errors.Is(err, report.ErrReportNotFound) {
			t.Fatalf("expected ErrReportNotFound, got %v", err)
		}
	})
}
