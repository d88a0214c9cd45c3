// Package employeetest はテスト専用の社員リポジトリ実装を提供します。
package employeetest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// Repository は employee の各リポジトリインターフェースを満たすメモリ上の実装です。
type Repository struct {
	mu        sync.Mutex
	nextID    int64
	employees []*employee.Employee
	history   []employee.ChangeRecord

	// Err が設定されているとすべての呼び出しがそのエラーを返します。
	Err error
}

var (
	_ employee.Reader         = (*Repository)(nil)
	_ employee.Writer         = (*Repository)(nil)
	_ employee.Searcher       = (*Repository)(nil)
	_ employee.MetadataReader = (*Repository)(nil)
	_ employee.Auditor        = (*Repository)(nil)
)

// NewRepository は与えられた社員で初期化します。
func NewRepository(seed ...*employee.Employee) *Repository {
	r := &Repository{}
	for _, e := range seed {
		r.employees = append(r.employees, e)
		if e.ID() > r.nextID {
			r.nextID = e.ID()
		}
	}
	return r
}

func (r *Repository) FindAll(ctx context.Context) ([]*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return slices.Clone(r.employees), nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, e := range r.employees {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (r *Repository) Save(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.nextID++
	saved := e.WithID(r.nextID)
	r.employees = append(r.employees, saved)
	return saved, nil
}

func (r *Repository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for i, existing := range r.employees {
		if existing.ID() == e.ID() {
			r.employees[i] = e
			return e, nil
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for i, existing := range r.employees {
		if existing.ID() == id {
			r.employees = slices.Delete(r.employees, i, i+1)
			return nil
		}
	}
	return employee.ErrEmployeeNotFound
}

func (r *Repository) SearchByText(ctx context.Context, text string) ([]*employee.Employee, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	return r.filter(func(e *employee.Employee) bool {
		return strings.Contains(strings.ToLower(e.Name().Full()), t) || strings.Contains(e.Email().String(), t)
	})
}

func (r *Repository) FindByDepartment(ctx context.Context, d employee.Department) ([]*employee.Employee, error) {
	return r.filter(func(e *employee.Employee) bool { return e.Department().Equal(d) })
}

func (r *Repository) FindByStatus(ctx context.Context, s employee.AccountStatus) ([]*employee.Employee, error) {
	return r.filter(func(e *employee.Employee) bool { return e.Status().Equal(s) })
}

func (r *Repository) FindWithConflict(ctx context.Context) ([]*employee.Employee, error) {
	return r.filter(func(e *employee.Employee) bool { return e.HasConflictOfInterest() })
}

func (r *Repository) DistinctDepartments(ctx context.Context) ([]string, error) {
	return r.distinct(func(e *employee.Employee) string { return e.Department().String() })
}

func (r *Repository) DistinctStatuses(ctx context.Context) ([]string, error) {
	return r.distinct(func(e *employee.Employee) string { return e.Status().String() })
}

func (r *Repository) DistinctTitles(ctx context.Context) ([]string, error) {
	return r.distinct(func(e *employee.Employee) string { return e.Title() })
}

func (r *Repository) RecordChange(ctx context.Context, c employee.ChangeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.history = append(r.history, c)
	return nil
}

func (r *Repository) ChangeHistory(ctx context.Context, employeeID int64) ([]employee.ChangeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []employee.ChangeRecord
	for _, c := range r.history {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *Repository) filter(keep func(*employee.Employee) bool) ([]*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*employee.Employee
	for _, e := range r.employees {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *Repository) distinct(key func(*employee.Employee) string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	seen := map[string]struct{}{}
	var out []string
	for _, e := range r.employees {
		k := key(e)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out, nil
}

// Builder はテスト用社員の生成を簡略化します。
type Builder struct {
	attrs employee.Attributes
}

// NewBuilder は有効な既定値を持つ Builder を返します。
func NewBuilder(id int64) *Builder {
	hired := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	return &Builder{attrs: employee.Attributes{
		ID:         id,
		FirstName:  "Juan",
		LastName:   "Perez",
		Email:      "juan.perez@empresa.com",
		Title:      "Analista",
		Department: employee.DeptTechnology,
		Status:     employee.StatusActive,
		HiredAt:    hired,
		UpdatedAt:  hired,
	}}
}

func (b *Builder) Name(first, last string) *Builder {
	b.attrs.FirstName, b.attrs.LastName = first, last
	return b
}

func (b *Builder) Email(v string) *Builder { b.attrs.Email = v; return b }

func (b *Builder) Title(v string) *Builder { b.attrs.Title = v; return b }

func (b *Builder) Department(v string) *Builder { b.attrs.Department = v; return b }

func (b *Builder) Status(v string) *Builder { b.attrs.Status = v; return b }

func (b *Builder) HiredAt(v time.Time) *Builder { b.attrs.HiredAt = v; return b }

func (b *Builder) UpdatedAt(v time.Time) *Builder { b.attrs.UpdatedAt = v; return b }

func (b *Builder) Conflict(v bool) *Builder { b.attrs.ConflictOfInterest = v; return b }

func (b *Builder) Profile(p employee.Profile) *Builder { b.attrs.Profile = p; return b }

// Build は社員を生成します。不正な属性の場合は panic します。
func (b *Builder) Build() *employee.Employee {
	e, err := employee.New(b.attrs)
	if err != nil {
		panic(err)
	}
	return e
}
