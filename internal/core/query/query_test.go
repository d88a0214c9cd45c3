package query

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee/employeetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func fixture() []*employee.Employee {
	return []*employee.Employee{
		employeetest.NewBuilder(1).Name("Ana", "Ruiz").Email("ana.ruiz@empresa.com").Title("Analista").
			Department(employee.DeptTechnology).Status(employee.StatusActive).
			HiredAt(day(2020, 1, 10)).UpdatedAt(day(2024, 1, 5)).Build(),
		employeetest.NewBuilder(2).Name("Bruno", "Soto").Email("bruno.soto@empresa.com").Title("Contador").
			Department(employee.DeptFinance).Status(employee.StatusInactive).
			HiredAt(day(2019, 5, 20)).UpdatedAt(time.Date(2023, 6, 1, 15, 30, 0, 0, time.UTC)).Conflict(true).Build(),
		employeetest.NewBuilder(3).Name("Carla", "Vega").Email("carla.vega@corporacion.co").Title("Gerente Comercial").
			Department(employee.DeptSales).Status(employee.StatusSuspended).
			HiredAt(day(2021, 7, 1)).UpdatedAt(day(2022, 12, 31)).Build(),
		employeetest.NewBuilder(4).Name("Diego", "Mora").Email("diego.mora@gmail.com").Title("Auditor Senior").
			Department(employee.DeptAudit).Status(employee.StatusInReview).
			HiredAt(day(2018, 3, 15)).UpdatedAt(day(2024, 3, 10)).Conflict(true).Build(),
	}
}

func ids(es []*employee.Employee) []int64 {
	out := make([]int64, 0, len(es))
	for _, e := range es {
		out = append(out, e.ID())
	}
	return out
}

func TestApplyFilters_EmptyCriteriaKeepsOrder(t *testing.T) {
	t.Parallel()

	in := fixture()
	got := ApplyFilters(in, Criteria{})
	if diff := cmp.Diff(ids(in), ids(got)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestApplyFilters_ActiveOnlyExample(t *testing.T) {
	t.Parallel()

	in := []*employee.Employee{
		employeetest.NewBuilder(1).Department("Tecnología").Status("activo").Build(),
		employeetest.NewBuilder(2).Department("Finanzas").Status("inactivo").Build(),
	}
	got := ApplyFilters(in, Criteria{ActiveOnly: true})
	assert.Equal(t, []int64{1}, ids(got))
}

func TestApplyFilters_Stages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{"term on email", Criteria{Term: "soto"}, []int64{2}},
		{"term on department", Criteria{Term: "FINANZAS"}, []int64{2}},
		{"term on full name", Criteria{Term: "carla vega"}, []int64{3}},
		{"term on title", Criteria{Term: "gerente"}, []int64{3}},
		{"term on status", Criteria{Term: "en-revision"}, []int64{4}},
		{"initials need extended search", Criteria{Term: "dm"}, []int64{}},
		{"extended search matches initials", Criteria{Term: "dm", ExtendedSearch: true}, []int64{4}},
		{"field queries are combined with AND", Criteria{FieldQueries: []FieldQuery{
			{Field: FieldFirstName, Value: "a", Operator: OpContains},
			{Field: FieldEmail, Value: "empresa.com", Operator: OpEndsWith},
		}}, []int64{1}},
		{"starts with", Criteria{FieldQueries: []FieldQuery{{Field: FieldLastName, Value: "mo", Operator: OpStartsWith}}}, []int64{4}},
		{"equals", Criteria{FieldQueries: []FieldQuery{{Field: FieldDepartment, Value: "ventas", Operator: OpEquals}}}, []int64{3}},
		{"not equals", Criteria{FieldQueries: []FieldQuery{{Field: FieldDepartment, Value: "ventas", Operator: OpNotEquals}}}, []int64{1, 2, 4}},
		{"all fields default operator", Criteria{FieldQueries: []FieldQuery{{Field: FieldAll, Value: "suspendido"}}}, []int64{3}},
		{"status set", Criteria{Statuses: []string{"activo", "INACTIVO"}}, []int64{1, 2}},
		{"single status", Criteria{Status: "suspendido"}, []int64{3}},
		{"department set", Criteria{Departments: []string{"Ventas", "Auditoría"}}, []int64{3, 4}},
		{"title substrings", Criteria{Titles: []string{"conta", "AUDIT"}}, []int64{2, 4}},
		{"hire date range inclusive", Criteria{HireDate: DateRange{From: ptr(day(2019, 1, 1)), To: ptr(day(2020, 1, 10))}}, []int64{1, 2}},
		{"update date upper bound covers whole day", Criteria{UpdatedAt: DateRange{To: ptr(day(2023, 6, 1))}}, []int64{2, 3}},
		{"conflict only", Criteria{ConflictOnly: true}, []int64{2, 4}},
		{"exclude suspended", Criteria{ExcludeSuspended: true}, []int64{1, 2, 4}},
		{"inactive only", Criteria{InactiveOnly: true}, []int64{2}},
		{"contradictory flags yield empty", Criteria{ActiveOnly: true, InactiveOnly: true}, []int64{}},
		{"stages compose", Criteria{ConflictOnly: true, ExcludeSuspended: true, Term: "empresa"}, []int64{2}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ApplyFilters(fixture(), tc.criteria)
			if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
				t.Fatalf("unexpected ids (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := fixture()
	before := ids(in)
	_ = ApplyFilters(in, Criteria{Sort: &Sort{Field: SortByID, Direction: Desc}})
	assert.Equal(t, before, ids(in))
}

func TestSort_DescIsReverseOfAsc(t *testing.T) {
	t.Parallel()

	fields := []SortField{
		SortByID, SortByFirstName, SortByLastName, SortByEmail, SortByTitle,
		SortByDepartment, SortByHireDate, SortByUpdatedAt, SortByStatus,
	}
	for _, f := range fields {
		asc := ids(ApplyFilters(fixture(), Criteria{Sort: &Sort{Field: f, Direction: Asc}}))
		desc := ids(ApplyFilters(fixture(), Criteria{Sort: &Sort{Field: f, Direction: Desc}}))
		reversed := make([]int64, len(desc))
		for i, id := range desc {
			reversed[len(desc)-1-i] = id
		}
		assert.Equalf(t, asc, reversed, "field %s", f)
	}
}

func TestSort_KnownOrders(t *testing.T) {
	t.Parallel()

	got := ApplyFilters(fixture(), Criteria{Sort: &Sort{Field: SortByHireDate}})
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(got))

	got = ApplyFilters(fixture(), Criteria{Sort: &Sort{Field: SortByLastName, Direction: Desc}})
	assert.Equal(t, []int64{3, 2, 1, 4}, ids(got))
}

func TestSort_IsStableOnTies(t *testing.T) {
	t.Parallel()

	in := []*employee.Employee{
		employeetest.NewBuilder(7).Department(employee.DeptLegal).Build(),
		employeetest.NewBuilder(5).Department(employee.DeptLegal).Build(),
		employeetest.NewBuilder(6).Department(employee.DeptLegal).Build(),
	}
	for _, dir := range []Direction{Asc, Desc} {
		got := ApplyFilters(in, Criteria{Sort: &Sort{Field: SortByDepartment, Direction: dir}})
		assert.Equal(t, []int64{7, 5, 6}, ids(got))
	}
}

func TestValidateCriteria(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		criteria  Criteria
		wantField string
	}{
		{"hire range", Criteria{HireDate: DateRange{From: ptr(day(2024, 2, 1)), To: ptr(day(2024, 1, 1))}}, "fechaIngreso"},
		{"update range", Criteria{UpdatedAt: DateRange{From: ptr(day(2024, 2, 1)), To: ptr(day(2024, 1, 1))}}, "ultimaActualizacion"},
		{"unknown status", Criteria{Statuses: []string{"borrado"}}, "estado"},
		{"unknown single department", Criteria{Department: "Sistemas"}, "departamento"},
		{"unknown field", Criteria{FieldQueries: []FieldQuery{{Field: "salario", Value: "x"}}}, "camposBusqueda[0].campo"},
		{"empty value", Criteria{FieldQueries: []FieldQuery{{Field: FieldFirstName, Value: "  "}}}, "camposBusqueda[0].valor"},
		{"unknown operator", Criteria{FieldQueries: []FieldQuery{{Field: FieldFirstName, Value: "a", Operator: "parecido"}}}, "camposBusqueda[0].operador"},
		{"page below one", Criteria{Page: &Pagination{Page: 0, Size: 10}}, "paginacion.pagina"},
		{"page size too large", Criteria{Page: &Pagination{Page: 1, Size: 1001}}, "paginacion.tamanio"},
		{"page size zero", Criteria{Page: &Pagination{Page: 1, Size: 0}}, "paginacion.tamanio"},
		{"sort field", Criteria{Sort: &Sort{Field: "salario"}}, "orden.campo"},
		{"sort direction", Criteria{Sort: &Sort{Field: SortByID, Direction: "up"}}, "orden.direccion"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := ValidateCriteria(tc.criteria)
			require.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tc.wantField, res.Errors[0].Field)
			assert.NotEmpty(t, res.Errors[0].Message)
			assert.True(t, errors.Is(res.Err(), domainerr.ErrValidation))
		})
	}
}

func TestValidateCriteria_Valid(t *testing.T) {
	t.Parallel()

	res := ValidateCriteria(Criteria{
		Term:        "ana",
		Statuses:    []string{"Activo", " "},
		Departments: []string{"Tecnología"},
		HireDate:    DateRange{From: ptr(day(2020, 1, 1)), To: ptr(day(2020, 1, 1))},
		FieldQueries: []FieldQuery{
			{Field: FieldEmail, Value: "empresa", Operator: OpContains},
		},
		Sort: &Sort{Field: SortByUpdatedAt, Direction: Desc},
		Page: &Pagination{Page: 1, Size: 1000},
	})
	require.True(t, res.Valid, "%+v", res.Errors)
	assert.NoError(t, res.Err())
}

func TestValidateCriteria_DateOnlyUpperBoundCoversDay(t *testing.T) {
	t.Parallel()

	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Criteria{UpdatedAt: DateRange{From: &noon, To: ptr(day(2024, 1, 1))}}
	require.True(t, ValidateCriteria(c).Valid)

	late := employeetest.NewBuilder(9).Name("Eva", "Mora").Email("eva.mora@empresa.com").
		UpdatedAt(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)).Build()
	assert.Equal(t, []int64{9}, ids(ApplyFilters([]*employee.Employee{late}, c)))

	c.UpdatedAt.From = ptr(day(2024, 1, 2))
	assert.False(t, ValidateCriteria(c).Valid)
}

func TestOptimizeCriteria(t *testing.T) {
	t.Parallel()

	raw := Criteria{
		Term:        "  ana ",
		Statuses:    []string{"", " activo ", "activo"},
		Departments: []string{},
		Titles:      []string{" "},
		FieldQueries: []FieldQuery{
			{Field: FieldFirstName, Value: " "},
			{Field: FieldEmail, Value: " empresa "},
		},
		Sort: &Sort{},
		Page: &Pagination{Page: 2, Size: 20},
	}

	once := OptimizeCriteria(raw)
	assert.Equal(t, "ana", once.Term)
	assert.Equal(t, []string{"activo"}, once.Statuses)
	assert.Nil(t, once.Departments)
	assert.Nil(t, once.Titles)
	assert.Equal(t, []FieldQuery{{Field: FieldEmail, Value: "empresa"}}, once.FieldQueries)
	assert.Nil(t, once.Sort)

	twice := OptimizeCriteria(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("OptimizeCriteria is not idempotent (-once +twice):\n%s", diff)
	}

	require.Len(t, raw.Statuses, 3, "input must not be modified")
}

func TestOptimizeCriteria_EmptyEqualsAbsent(t *testing.T) {
	t.Parallel()

	optimized := OptimizeCriteria(Criteria{Term: "   ", Statuses: []string{""}, Titles: []string{}})
	assert.True(t, optimized.IsEmpty())
	assert.Equal(t, ids(fixture()), ids(ApplyFilters(fixture(), optimized)))
}

func TestSearch_ChoosesPathPerRecord(t *testing.T) {
	t.Parallel()

	valid := fixture()[0].Attributes()
	broken := employee.Attributes{
		FirstName:  "X",
		LastName:   "Nunez",
		Email:      "sin-correo",
		Title:      "Temporal",
		Department: "Bodega",
		Status:     "activo",
	}

	hits := Search([]employee.Attributes{valid, broken}, "ar")
	require.Len(t, hits, 1)
	assert.Equal(t, SearchStrict, hits[0].Mode)
	assert.NotNil(t, hits[0].Employee)

	hits = Search([]employee.Attributes{valid, broken}, "sin")
	require.Len(t, hits, 1)
	assert.Equal(t, SearchLenient, hits[0].Mode)
	assert.Nil(t, hits[0].Employee)
	assert.Equal(t, "Nunez", hits[0].Record.LastName)
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	all := fixture()

	p := Paginate(all, &Pagination{Page: 2, Size: 3})
	assert.Equal(t, []int64{4}, ids(p.Items))
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, 2, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)

	p = Paginate(all, &Pagination{Page: 3, Size: 3})
	assert.Empty(t, p.Items)

	p = Paginate(all, nil)
	assert.Equal(t, ids(all), ids(p.Items))
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.False(t, p.HasNext)

	p = Paginate(nil, &Pagination{Page: 1, Size: 10})
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
}

func TestPaginate_HugePageIsEmpty(t *testing.T) {
	t.Parallel()

	all := fixture()
	criteria := Criteria{Page: &Pagination{Page: 1<<60 + 1, Size: 1000}}
	require.True(t, ValidateCriteria(criteria).Valid)

	var p Page
	require.NotPanics(t, func() { p = Paginate(all, criteria.Page) })
	assert.Empty(t, p.Items)
	assert.Equal(t, len(all), p.Total)
	assert.Equal(t, 1, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	got := Describe(Criteria{
		Term:         "ana",
		Status:       "activo",
		ConflictOnly: true,
		ActiveOnly:   true,
		Sort:         &Sort{Field: SortByLastName},
	})
	assert.Equal(t, "texto:ana|estado:activo|conflicto:true|solo-activos:true|orden:apellido:asc", got)
	assert.Equal(t, "", Describe(Criteria{}))
}
