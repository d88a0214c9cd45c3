package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// SortEmployees は安定ソートで並び替えます。desc は比較結果の符号を反転します。
// 未知のキーの場合は何もしません。
func SortEmployees(employees []*employee.Employee, s Sort) {
	compare := comparator(s.Field)
	if compare == nil {
		return
	}
	if s.Direction == Desc {
		slices.SortStableFunc(employees, func(a, b *employee.Employee) int { return -compare(a, b) })
		return
	}
	slices.SortStableFunc(employees, compare)
}

func comparator(f SortField) func(a, b *employee.Employee) int {
	text := func(get func(*employee.Employee) string) func(a, b *employee.Employee) int {
		return func(a, b *employee.Employee) int {
			return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
		}
	}
	switch f {
	case SortByID:
		return func(a, b *employee.Employee) int { return cmp.Compare(a.ID(), b.ID()) }
	case SortByFirstName:
		return text(func(e *employee.Employee) string { return e.Name().First() })
	case SortByLastName:
		return text(func(e *employee.Employee) string { return e.Name().Last() })
	case SortByEmail:
		return text(func(e *employee.Employee) string { return e.Email().String() })
	case SortByTitle:
		return text((*employee.Employee).Title)
	case SortByDepartment:
		return text(func(e *employee.Employee) string { return e.Department().String() })
	case SortByStatus:
		return text(func(e *employee.Employee) string { return e.Status().String() })
	case SortByHireDate:
		return func(a, b *employee.Employee) int { return a.HiredAt().Compare(b.HiredAt()) }
	case SortByUpdatedAt:
		return func(a, b *employee.Employee) int { return a.UpdatedAt().Compare(b.UpdatedAt()) }
	default:
		return nil
	}
}
