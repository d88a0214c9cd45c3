package query

import (
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// Page はページング結果です。
type Page struct {
	Items          []*employee.Employee
	Total          int
	Page           int
	Size           int
	TotalPages     int
	HasPrev        bool
	HasNext        bool
	AppliedFilters string
}

// Paginate は 1 始まりのページを切り出します。p が nil の場合は 1 ページ目を既定サイズで返します。
func Paginate(employees []*employee.Employee, p *Pagination) Page {
	page, size := 1, DefaultPageSize
	if p != nil {
		if p.Page > 0 {
			page = p.Page
		}
		if p.Size > 0 {
			size = min(p.Size, MaxPageSize)
		}
	}

	total := len(employees)
	totalPages := (total + size - 1) / size
	start, end := total, total
	if page <= totalPages {
		start = (page - 1) * size
		end = min(start+size, total)
	}

	return Page{
		Items:      employees[start:end],
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Describe は適用された条件を "clave:valor" を "|" で連結した文字列で表します。
func Describe(c Criteria) string {
	var parts []string
	add := func(key, value string) { parts = append(parts, key+":"+value) }

	if c.Term != "" {
		add("texto", c.Term)
	}
	for _, fq := range c.FieldQueries {
		op := fq.Operator
		if op == "" {
			op = OpContains
		}
		add("campo", fmt.Sprintf("%s~%s~%s", fq.Field, op, fq.Value))
	}
	if c.Status != "" {
		add("estado", c.Status)
	}
	if len(c.Statuses) > 0 {
		add("estados", strings.Join(c.Statuses, ","))
	}
	if c.Department != "" {
		add("departamento", c.Department)
	}
	if len(c.Departments) > 0 {
		add("departamentos", strings.Join(c.Departments, ","))
	}
	if len(c.Titles) > 0 {
		add("cargos", strings.Join(c.Titles, ","))
	}
	if !c.HireDate.IsZero() {
		add("fechaIngreso", describeRange(c.HireDate))
	}
	if !c.UpdatedAt.IsZero() {
		add("ultimaActualizacion", describeRange(c.UpdatedAt))
	}
	if c.ConflictOnly {
		add("conflicto", "true")
	}
	if c.ActiveOnly {
		add("solo-activos", "true")
	}
	if c.InactiveOnly {
		add("solo-inactivos", "true")
	}
	if c.ExcludeSuspended {
		add("excluir-suspendidos", "true")
	}
	if c.Sort != nil {
		dir := c.Sort.Direction
		if dir == "" {
			dir = Asc
		}
		add("orden", fmt.Sprintf("%s:%s", c.Sort.Field, dir))
	}
	return strings.Join(parts, "|")
}

func describeRange(r DateRange) string {
	const layout = "2006-01-02"
	from, to := "", ""
	if r.From != nil {
		from = r.From.Format(layout)
	}
	if r.To != nil {
		to = r.To.Format(layout)
	}
	return from + ".." + to
}
