package query

import (
	"slices"
	"strings"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/samber/lo"
)

// ApplyFilters は条件が指定された段階だけを順に適用し、最後に並び替えます。
// 入力スライスは変更しません。事前に ValidateCriteria を通した条件を渡してください。
func ApplyFilters(employees []*employee.Employee, c Criteria) []*employee.Employee {
	out := slices.Clone(employees)

	if term := strings.TrimSpace(c.Term); term != "" {
		match := matchSearchText
		if c.ExtendedSearch {
			match = MatchStrict
		}
		out = keep(out, func(e *employee.Employee) bool { return match(e, term) })
	}

	for _, fq := range c.FieldQueries {
		fq := fq
		out = keep(out, func(e *employee.Employee) bool { return evaluate(fq, e) })
	}

	out = applyCategorical(out, c)
	out = applyDateRanges(out, c)
	out = applyFlags(out, c)

	if c.Sort != nil {
		SortEmployees(out, *c.Sort)
	}
	return out
}

func applyCategorical(in []*employee.Employee, c Criteria) []*employee.Employee {
	out := in
	if s := strings.ToLower(strings.TrimSpace(c.Status)); s != "" {
		out = keep(out, func(e *employee.Employee) bool { return e.Status().String() == s })
	}
	if len(c.Statuses) > 0 {
		set := lo.Map(c.Statuses, func(s string, _ int) string { return strings.ToLower(strings.TrimSpace(s)) })
		out = keep(out, func(e *employee.Employee) bool { return lo.Contains(set, e.Status().String()) })
	}
	if d := strings.TrimSpace(c.Department); d != "" {
		out = keep(out, func(e *employee.Employee) bool { return e.Department().String() == d })
	}
	if len(c.Departments) > 0 {
		set := lo.Map(c.Departments, func(s string, _ int) string { return strings.TrimSpace(s) })
		out = keep(out, func(e *employee.Employee) bool { return lo.Contains(set, e.Department().String()) })
	}
	if len(c.Titles) > 0 {
		candidates := lo.Map(c.Titles, func(s string, _ int) string { return strings.ToLower(strings.TrimSpace(s)) })
		out = keep(out, func(e *employee.Employee) bool {
			title := strings.ToLower(e.Title())
			return lo.SomeBy(candidates, func(t string) bool { return strings.Contains(title, t) })
		})
	}
	return out
}

func applyDateRanges(in []*employee.Employee, c Criteria) []*employee.Employee {
	out := in
	if !c.HireDate.IsZero() {
		out = keep(out, func(e *employee.Employee) bool { return c.HireDate.contains(e.HiredAt()) })
	}
	if !c.UpdatedAt.IsZero() {
		out = keep(out, func(e *employee.Employee) bool { return c.UpdatedAt.contains(e.UpdatedAt()) })
	}
	return out
}

func applyFlags(in []*employee.Employee, c Criteria) []*employee.Employee {
	out := in
	if c.ConflictOnly {
		out = keep(out, (*employee.Employee).HasConflictOfInterest)
	}
	if c.ActiveOnly {
		out = keep(out, func(e *employee.Employee) bool { return e.Status().IsActive() })
	}
	if c.InactiveOnly {
		out = keep(out, func(e *employee.Employee) bool { return e.Status().IsInactive() })
	}
	if c.ExcludeSuspended {
		out = keep(out, func(e *employee.Employee) bool { return !e.Status().IsSuspended() })
	}
	return out
}

// contains は両端を含めて判定します。日付のみ（UTC 0 時）の上限はその日の終わりまでを含みます。
func (r DateRange) contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(inclusiveUpper(*r.To)) {
		return false
	}
	return true
}

func inclusiveUpper(t time.Time) time.Time {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Add(24*time.Hour - time.Nanosecond)
	}
	return u
}

func evaluate(fq FieldQuery, e *employee.Employee) bool {
	value := strings.ToLower(fieldValue(fq.Field, e))
	needle := strings.ToLower(strings.TrimSpace(fq.Value))
	switch fq.Operator {
	case OpStartsWith:
		return strings.HasPrefix(value, needle)
	case OpEndsWith:
		return strings.HasSuffix(value, needle)
	case OpEquals:
		return value == needle
	case OpNotEquals:
		return value != needle
	default:
		return strings.Contains(value, needle)
	}
}

func fieldValue(f Field, e *employee.Employee) string {
	switch f {
	case FieldFirstName:
		return e.Name().First()
	case FieldLastName:
		return e.Name().Last()
	case FieldEmail:
		return e.Email().String()
	case FieldTitle:
		return e.Title()
	case FieldDepartment:
		return e.Department().String()
	case FieldAll:
		return strings.Join(searchFields(e), " ")
	default:
		return ""
	}
}

func searchFields(e *employee.Employee) []string {
	return []string{
		e.Name().First(),
		e.Name().Last(),
		e.Email().String(),
		e.Title(),
		e.Department().String(),
		e.Status().String(),
	}
}

// matchSearchText はいずれかの項目、または "名 姓" が語を含むかを判定します。
func matchSearchText(e *employee.Employee, term string) bool {
	t := strings.ToLower(term)
	if strings.Contains(strings.ToLower(e.Name().Full()), t) {
		return true
	}
	return lo.SomeBy(searchFields(e), func(v string) bool {
		return strings.Contains(strings.ToLower(v), t)
	})
}

func keep(in []*employee.Employee, pred func(*employee.Employee) bool) []*employee.Employee {
	out := make([]*employee.Employee, 0, len(in))
	for _, e := range in {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
