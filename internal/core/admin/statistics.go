package admin

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// DepartmentCount は部署ごとの人数と全体に対する割合 (四捨五入した %) です。
type DepartmentCount struct {
	Department string
	Count      int
	Percent    int
}

// Statistics は社員全体の集計です。
type Statistics struct {
	Total        int
	Active       int
	Inactive     int
	Suspended    int
	InReview     int
	Conflicted   int
	NeedsRefresh int
	ByDepartment []DepartmentCount
}

// Statistics は全社員を状態・利益相反・更新要否・部署で集計します。
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	var all []*employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if all, err = s.repo.FindAll(txCtx); err != nil {
			return domainerr.Dependency("employees.find_all", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	out := &Statistics{Total: len(all)}
	for _, e := range all {
		st := e.Status()
		switch {
		case st.IsActive():
			out.Active++
		case st.IsInactive():
			out.Inactive++
		case st.IsSuspended():
			out.Suspended++
		case st.IsInReview():
			out.InReview++
		}
		if e.HasConflictOfInterest() {
			out.Conflicted++
		}
		if s.rules.NeedsDataRefresh(e).Required {
			out.NeedsRefresh++
		}
	}
	out.ByDepartment = departmentBreakdown(all)
	return out, nil
}

// departmentBreakdown は人数の多い順、同数なら部署名順に並べます。
func departmentBreakdown(all []*employee.Employee) []DepartmentCount {
	counts := lo.CountValuesBy(all, func(e *employee.Employee) string { return e.Department().String() })
	out := make([]DepartmentCount, 0, len(counts))
	for dept, n := range counts {
		out = append(out, DepartmentCount{
			Department: dept,
			Count:      n,
			Percent:    int(math.Round(float64(n) * 100 / float64(len(all)))),
		})
	}
	slices.SortFunc(out, func(a, b DepartmentCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Department, b.Department)
	})
	return out
}
