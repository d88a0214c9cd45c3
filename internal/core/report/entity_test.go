package report_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee/employeetest"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

var created = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func mustType(t *testing.T, raw string) report.Type {
	t.Helper()
	v, err := report.NewType(raw)
	require.NoError(t, err)
	return v
}

func mustFormat(t *testing.T, raw string) report.Format {
	t.Helper()
	v, err := report.NewFormat(raw)
	require.NoError(t, err)
	return v
}

func newReport(t *testing.T, typ, format string) *report.Report {
	t.Helper()
	rt := mustType(t, typ)
	r, err := report.New(report.Params{
		Type:        rt,
		Format:      mustFormat(t, format),
		CreatedAt:   created,
		RequestedBy: 9,
		Columns:     rt.Columns(),
		Rows:        []report.Row{{report.ColID: int64(1)}},
	})
	require.NoError(t, err)
	return r
}

func TestNewType(t *testing.T) {
	t.Parallel()

	got, err := report.NewType("  Conflicto-Intereses ")
	require.NoError(t, err)
	assert.Equal(t, report.TypeConflictOfInterest, got.String())
	assert.True(t, got.RequiresSpecialFilter())
	assert.False(t, got.CanRunWithoutFilters())
	assert.Equal(t, "reporte_conflicto_intereses", got.FileBaseName())

	_, err = report.NewType("nomina")
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrInvalidType))
	assert.True(t, errors.Is(err, domainerr.ErrValidation))
}

func TestNewFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ext         string
		contentType string
	}{
		"excel": {ext: "xlsx", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		"CSV":   {ext: "csv", contentType: "text/csv"},
		"pdf":   {ext: "pdf", contentType: "application/pdf"},
	}
	for raw, tt := range tests {
		f, err := report.NewFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, tt.ext, f.Extension(), raw)
		assert.Equal(t, tt.contentType, f.ContentType(), raw)
	}

	_, err := report.NewFormat("docx")
	assert.True(t, errors.Is(err, report.ErrInvalidFormat))
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	cat := report.Catalog()
	require.Len(t, cat, 6)
	assert.Equal(t, report.TypeMembers, cat[0].Type)
	assert.Equal(t, report.TypeFull, cat[5].Type)
	assert.Equal(t, []string{"ID", "Nombre", "Apellido", "Email", "Cargo", "Departamento", "Fecha Ingreso", "Estado"}, cat[0].Columns)
	for _, info := range cat {
		assert.NotEmpty(t, info.Name, info.Type)
		assert.Equal(t, "ID", info.Columns[0], info.Type)
	}
}

func TestReport_NewRequiresColumns(t *testing.T) {
	t.Parallel()

	_, err := report.New(report.Params{
		Type:   mustType(t, report.TypeMembers),
		Format: mustFormat(t, report.FormatCSV),
	})
	assert.True(t, errors.Is(err, report.ErrInvalidColumns))
}

func TestReport_StoragePathAndFileName(t *testing.T) {
	t.Parallel()

	r := newReport(t, report.TypeDependents, report.FormatPDF)
	assert.Equal(t, "/reportes/personas-cargo/2025-03-01_personas-cargo.pdf", r.StoragePath())
	assert.Equal(t, "reporte_personas_cargo_2025-03-01.pdf", r.FileName())
	assert.Equal(t, 1, r.RowCount())
}

func TestReport_AttachFileOnce(t *testing.T) {
	t.Parallel()

	r := newReport(t, report.TypeMembers, report.FormatExcel)
	_, ok := r.File()
	require.False(t, ok)

	require.NoError(t, r.AttachFile(report.File{Path: "/a", SizeBytes: 1536}))
	f, ok := r.File()
	require.True(t, ok)
	assert.Equal(t, "1.5 KB", f.Size)

	err := r.AttachFile(report.File{Path: "/b"})
	assert.True(t, errors.Is(err, report.ErrFileAlreadyAttached))
	f, _ = r.File()
	assert.Equal(t, "/a", f.Path)
}

func TestReport_Windows(t *testing.T) {
	t.Parallel()

	r := newReport(t, report.TypeMembers, report.FormatCSV)

	assert.False(t, r.IsDownloadable(created.Add(time.Minute)), "no file attached yet")
	require.NoError(t, r.AttachFile(report.File{Path: "/x"}))

	tests := []struct {
		name         string
		at           time.Time
		downloadable bool
		regenerable  bool
	}{
		{name: "just created", at: created, downloadable: true, regenerable: true},
		{name: "two hours", at: created.Add(2 * time.Hour), downloadable: true, regenerable: true},
		{name: "past two hours", at: created.Add(2*time.Hour + time.Second), downloadable: false, regenerable: true},
		{name: "twenty four hours", at: created.Add(24 * time.Hour), downloadable: false, regenerable: true},
		{name: "past twenty four hours", at: created.Add(24*time.Hour + time.Nanosecond), downloadable: false, regenerable: false},
		{name: "clock behind creation", at: created.Add(-time.Minute), downloadable: false, regenerable: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.downloadable, r.IsDownloadable(tt.at), tt.name)
		assert.Equal(t, tt.regenerable, r.CanBeRegenerated(tt.at), tt.name)
	}
}

func TestRehydrate(t *testing.T) {
	t.Parallel()

	r, err := report.Rehydrate(report.Record{
		ID:        4,
		Type:      report.TypeStudies,
		Format:    report.FormatCSV,
		CreatedAt: created,
		Columns:   []string{"ID"},
		RowCount:  12,
		File:      &report.File{Path: "/p", Size: "3 B", SizeBytes: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.ID())
	assert.Equal(t, 12, r.RowCount())
	assert.True(t, r.HasFile())

	_, err = report.Rehydrate(report.Record{Type: report.TypeStudies, Format: report.FormatCSV, Columns: []string{"ID"}, RowCount: -1})
	assert.True(t, errors.Is(err, report.ErrInvalidRowCount))
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0 B", report.FormatSize(0))
	assert.Equal(t, "1023 B", report.FormatSize(1023))
	assert.Equal(t, "1.0 KB", report.FormatSize(1024))
	assert.Equal(t, "2.5 MB", report.FormatSize(5*1024*1024/2))
}

func TestProject(t *testing.T) {
	t.Parallel()

	withProfile := employeetest.NewBuilder(1).Name("Ana", "Ruiz").Conflict(true).
		UpdatedAt(time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)).
		Profile(employee.Profile{
			Education: &employee.Education{Level: "Profesional", Institution: "Universidad Nacional", Degree: "Ingeniería", GraduationYear: 2015},
			Contact:   &employee.Contact{Phone: "3001234567", Address: "Calle 1", EmergencyContact: "Pedro Ruiz", EmergencyRelationship: "hermano"},
			Dependents: []employee.Dependent{
				{Name: "Luis", Relationship: "hijo", Age: 5},
				{Name: "Sara", Relationship: "hija", Age: 8},
			},
		}).Build()
	bare := employeetest.NewBuilder(2).Name("Bruno", "Soto").Email("bruno.soto@empresa.com").Build()
	es := []*employee.Employee{withProfile, bare}

	t.Run("members", func(t *testing.T) {
		rows := report.Project(mustType(t, report.TypeMembers), es)
		require.Len(t, rows, 2)
		assert.Equal(t, report.Row{
			"ID": int64(2), "Nombre": "Bruno", "Apellido": "Soto", "Email": "bruno.soto@empresa.com",
			"Cargo": "Analista", "Departamento": employee.DeptTechnology, "Fecha Ingreso": "2020-01-15", "Estado": "activo",
		}, rows[1])
	})

	t.Run("conflict", func(t *testing.T) {
		rows := report.Project(mustType(t, report.TypeConflictOfInterest), es)
		assert.Equal(t, "Sí", rows[0]["Conflicto de Intereses"])
		assert.Equal(t, "2024-06-30", rows[0]["Última Actualización"])
		assert.Equal(t, "No", rows[1]["Conflicto de Intereses"])
	})

	t.Run("studies", func(t *testing.T) {
		rows := report.Project(mustType(t, report.TypeStudies), es)
		assert.Equal(t, 2015, rows[0]["Año Graduación"])
		assert.Equal(t, "Universidad Nacional", rows[0]["Institución"])
		assert.Equal(t, "", rows[1]["Nivel Educativo"])
		assert.Equal(t, "", rows[1]["Año Graduación"])
	})

	t.Run("contact", func(t *testing.T) {
		rows := report.Project(mustType(t, report.TypeContact), es)
		assert.Equal(t, "3001234567", rows[0]["Teléfono"])
		assert.Equal(t, "hermano", rows[0]["Parentesco"])
		assert.Equal(t, "", rows[1]["Teléfono"])
	})

	t.Run("dependents", func(t *testing.T) {
		rows := report.Project(mustType(t, report.TypeDependents), es)
		assert.Equal(t, "Sí", rows[0]["Tiene Personas a Cargo"])
		assert.Equal(t, 2, rows[0]["Número de Personas"])
		assert.Equal(t, "hijo, hija", rows[0]["Parentesco"])
		assert.Equal(t, "5, 8", rows[0]["Edades"])
		assert.Equal(t, "No", rows[1]["Tiene Personas a Cargo"])
		assert.Equal(t, "", rows[1]["Edades"])
	})

	t.Run("full has every column", func(t *testing.T) {
		typ := mustType(t, report.TypeFull)
		rows := report.Project(typ, es)
		for _, col := range typ.Columns() {
			assert.Contains(t, rows[0], col)
		}
	})
}

func TestSchedule_NextRunAndDue(t *testing.T) {
	t.Parallel()

	s := &report.Schedule{
		ID:        1,
		Frequency: report.FrequencyWeekly,
		TimeOfDay: "07:30",
		Active:    true,
		CreatedAt: time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC),
		Recipients: []report.Recipient{
			{ID: 1, Email: "a@empresa.com", Active: true},
			{ID: 2, Email: "b@empresa.com", Active: false},
			{ID: 3, Email: " ", Active: true},
		},
	}
	assert.Equal(t, time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC), s.NextRun())
	assert.False(t, s.IsDue(time.Date(2025, 3, 1, 7, 29, 0, 0, time.UTC)))
	assert.True(t, s.IsDue(time.Date(2025, 3, 1, 7, 30, 0, 0, time.UTC)))

	last := time.Date(2025, 3, 1, 7, 31, 0, 0, time.UTC)
	s.LastRunAt = &last
	assert.Equal(t, time.Date(2025, 3, 8, 7, 30, 0, 0, time.UTC), s.NextRun())

	s.Frequency = report.FrequencyQuarterly
	assert.Equal(t, time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC), s.NextRun())

	s.Active = false
	assert.False(t, s.IsDue(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	require.Len(t, s.ActiveRecipients(), 1)
	assert.Equal(t, int64(1), s.ActiveRecipients()[0].ID)
}
