package report

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
)

// Frequency は定期実行の周期です。
type Frequency string

const (
	FrequencyDaily     Frequency = "diario"
	FrequencyWeekly    Frequency = "semanal"
	FrequencyMonthly   Frequency = "mensual"
	FrequencyQuarterly Frequency = "trimestral"
)

// Recipient は通知先です。
type Recipient struct {
	ID     int64
	Email  string
	Name   string
	Kind   string
	Active bool
}

// Schedule は定期レポートの設定です。
type Schedule struct {
	ID         int64
	Name       string
	Type       Type
	Format     Format
	Criteria   query.Criteria
	Frequency  Frequency
	TimeOfDay  string
	Active     bool
	Recipients []Recipient
	CreatedBy  int64
	CreatedAt  time.Time
	LastRunAt  *time.Time
}

// ActiveRecipients は有効な通知先だけを返します。
func (s *Schedule) ActiveRecipients() []Recipient {
	return lo.Filter(s.Recipients, func(r Recipient, _ int) bool {
		return r.Active && strings.TrimSpace(r.Email) != ""
	})
}

// NextRun は次回実行予定時刻を返します。未実行なら作成時刻の実行時刻です。
func (s *Schedule) NextRun() time.Time {
	if s.LastRunAt == nil {
		return s.atTimeOfDay(s.CreatedAt.UTC())
	}
	last := s.LastRunAt.UTC()
	var next time.Time
	switch s.Frequency {
	case FrequencyWeekly:
		next = last.AddDate(0, 0, 7)
	case FrequencyMonthly:
		next = last.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		next = last.AddDate(0, 3, 0)
	default:
		next = last.AddDate(0, 0, 1)
	}
	return s.atTimeOfDay(next)
}

// IsDue は now 時点で実行すべきかを判定します。
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Active && !now.UTC().Before(s.NextRun())
}

func (s *Schedule) atTimeOfDay(day time.Time) time.Time {
	tod, err := time.Parse("15:04", strings.TrimSpace(s.TimeOfDay))
	if err != nil {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
}
