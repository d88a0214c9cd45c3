package query

import (
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// SearchMode はどちらの照合経路で判定したかを表します。
type SearchMode int

const (
	// SearchStrict は値オブジェクトを生成できたレコードを値オブジェクトの照合で判定します。
	SearchStrict SearchMode = iota + 1
	// SearchLenient は値オブジェクトを生成できないレコードを生の文字列で判定します。
	SearchLenient
)

func (m SearchMode) String() string {
	switch m {
	case SearchStrict:
		return "strict"
	case SearchLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// SearchHit は Search の 1 件分の結果です。Employee は strict の場合のみ設定されます。
type SearchHit struct {
	Record   employee.Attributes
	Employee *employee.Employee
	Mode     SearchMode
}

// MatchStrict は氏名（頭文字・語単位を含む）、メール、役職、部署名と部署コード、状態で照合します。
func MatchStrict(e *employee.Employee, term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	if e.Name().MatchesSearch(t) || e.Email().MatchesSearch(t) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Title()), t) {
		return true
	}
	dept := e.Department()
	if strings.Contains(strings.ToLower(dept.String()), t) || strings.ToLower(dept.Code()) == t {
		return true
	}
	return e.Status().String() == t
}

// MatchLenient は生の値に対する部分一致だけで照合します。
func MatchLenient(a employee.Attributes, term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		a.FirstName, a.LastName, a.FirstName + " " + a.LastName,
		a.Email, a.Title, a.Department, a.Status,
	}, "\n"))
	return strings.Contains(haystack, t)
}

// Search はレコードごとに生成可否で経路を選び、一致したものを返します。
func Search(records []employee.Attributes, term string) []SearchHit {
	var hits []SearchHit
	for _, rec := range records {
		if e, err := employee.New(rec); err == nil {
			if MatchStrict(e, term) {
				hits = append(hits, SearchHit{Record: rec, Employee: e, Mode: SearchStrict})
			}
			continue
		}
		if MatchLenient(rec, term) {
			hits = append(hits, SearchHit{Record: rec, Mode: SearchLenient})
		}
	}
	return hits
}
