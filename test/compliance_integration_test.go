//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ogurasousui/codex-compliance-audit/internal/adapters/formatter"
	repo "github.com/ogurasousui/codex-compliance-audit/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/admin"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/policy"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
	"github.com/ogurasousui/codex-compliance-audit/internal/platform/config"
	pg "github.com/ogurasousui/codex-compliance-audit/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

// memoryUploader はアップロードされたファイルをメモリに保持します。
type memoryUploader struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (u *memoryUploader) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.files[key] = append([]byte(nil), body...)
	return "memory://" + key, nil
}

func TestComplianceFlowIntegration(t *testing.T) {
	cfgPath := configPathFromEnv()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database, nil)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	employees := repo.NewEmployeeRepository(pool)
	reports := repo.NewReportRepository(pool)
	tx := pg.NewTransactionManager(pool)

	hired := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	var saved []*employee.Employee
	for _, a := range []employee.Attributes{
		{FirstName: "Ana", LastName: "Ruiz", Email: "ana.ruiz@empresa.com", Title: "Analista", Department: employee.DeptFinance, Status: employee.StatusActive, HiredAt: hired},
		{FirstName: "Luis", LastName: "Gómez", Email: "luis.gomez@empresa.com", Title: "Auditor", Department: employee.DeptAudit, Status: employee.StatusActive, HiredAt: hired, ConflictOfInterest: true},
	} {
		e, err := employee.New(a)
		if err != nil {
			t.Fatalf("employee.New error: %v", err)
		}
		created, err := employees.Save(ctx, e)
		if err != nil {
			t.Fatalf("Save error: %v", err)
		}
		saved = append(saved, created)
	}

	dup, _ := employee.New(employee.Attributes{FirstName: "Otra", LastName: "Ruiz", Email: "ana.ruiz@empresa.com", Department: employee.DeptLegal, Status: employee.StatusActive, HiredAt: hired})
	if _, err := employees.Save(ctx, dup); !errors.Is(err, employee.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}

	svc := admin.NewService(employees, policy.NewService(policy.DefaultConfig(), nil), nil, tx)

	page, err := svc.ListEmployees(ctx, admin.ListEmployeesInput{Criteria: query.Criteria{Term: "ruiz"}})
	if err != nil {
		t.Fatalf("ListEmployees error: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID() != saved[0].ID() {
		t.Fatalf("unexpected page: %+v", page)
	}

	dept := employee.DeptLegal
	result, err := svc.UpdateEmployee(ctx, admin.UpdateEmployeeInput{
		ID:        saved[0].ID(),
		Changes:   policy.Changes{Department: &dept},
		ChangedBy: saved[1].ID(),
		Reason:    "reorganización",
	})
	if err != nil {
		t.Fatalf("UpdateEmployee error: %v", err)
	}
	if result.Employee.Department().String() != employee.DeptLegal {
		t.Fatalf("update not applied: %s", result.Employee.Department())
	}

	history, err := svc.ChangeHistory(ctx, admin.GetEmployeeInput{ID: saved[0].ID()})
	if err != nil {
		t.Fatalf("ChangeHistory error: %v", err)
	}
	if len(history) != 1 || history[0].NewValue != employee.DeptLegal {
		t.Fatalf("unexpected history: %+v", history)
	}

	uploader := &memoryUploader{files: map[string][]byte{}}
	pipeline := report.NewPipeline(formatter.New(uploader), reports, report.WithEmployeeSource(employees))

	generated, err := pipeline.GenerateFromCriteria(ctx, report.CriteriaRequest{
		Type:        report.TypeConflictOfInterest,
		Format:      report.FormatCSV,
		RequestedBy: saved[1].ID(),
	})
	if err != nil {
		t.Fatalf("GenerateFromCriteria error: %v", err)
	}

	stored, err := reports.FindByID(ctx, generated.ID())
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if stored.RowCount() != 1 {
		t.Fatalf("expected 1 conflicted employee, got %d", stored.RowCount())
	}
	if f, ok := stored.File(); !ok || len(uploader.files) != 1 || f.SizeBytes == 0 {
		t.Fatalf("expected an uploaded file, got %+v (uploads=%d)", f, len(uploader.files))
	}

	if err := employees.Delete(ctx, saved[1].ID()); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := employees.FindByID(ctx, saved[1].ID()); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}
