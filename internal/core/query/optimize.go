package query

import (
	"strings"

	"github.com/samber/lo"
)

// OptimizeCriteria は空文字・空配列・値のない条件を取り除いた新しい条件を返します。
// 冪等であり、入力は変更しません。
func OptimizeCriteria(c Criteria) Criteria {
	out := c
	out.Term = strings.TrimSpace(c.Term)
	out.Status = strings.TrimSpace(c.Status)
	out.Department = strings.TrimSpace(c.Department)
	out.Statuses = cleanSet(c.Statuses)
	out.Departments = cleanSet(c.Departments)
	out.Titles = cleanSet(c.Titles)

	var fqs []FieldQuery
	for _, fq := range c.FieldQueries {
		fq.Value = strings.TrimSpace(fq.Value)
		if fq.Value == "" {
			continue
		}
		fqs = append(fqs, fq)
	}
	out.FieldQueries = fqs

	if c.Sort != nil {
		if c.Sort.Field == "" {
			out.Sort = nil
		} else {
			s := *c.Sort
			out.Sort = &s
		}
	}
	if c.Page != nil {
		p := *c.Page
		out.Page = &p
	}
	out.HireDate = cloneRange(c.HireDate)
	out.UpdatedAt = cloneRange(c.UpdatedAt)
	return out
}

func cleanSet(values []string) []string {
	trimmed := lo.Map(values, func(s string, _ int) string { return strings.TrimSpace(s) })
	cleaned := lo.Uniq(lo.Compact(trimmed))
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func cloneRange(r DateRange) DateRange {
	var out DateRange
	if r.From != nil {
		from := *r.From
		out.From = &from
	}
	if r.To != nil {
		to := *r.To
		out.To = &to
	}
	return out
}
