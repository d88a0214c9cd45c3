// Package policy は社員に対する業務ルール（更新可否・鮮度・完全性・権限・活動状況）を提供します。
package policy

import (
	"math"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Config は構築時に固定されるルール設定です。
type Config struct {
	MinDaysBetweenUpdates    int
	RequiresManagerApproval  bool
	NotifyOnImportantChanges bool
}

// DefaultConfig は既定のルール設定です。
func DefaultConfig() Config {
	return Config{
		MinDaysBetweenUpdates:    30,
		RequiresManagerApproval:  true,
		NotifyOnImportantChanges: true,
	}
}

const (
	refreshWindowDays = 365
	hoursPerDay       = 24
)

// Service は状態を持たないルール評価オブジェクトです。
type Service struct {
	cfg   Config
	clock Clock
}

// UseCase はルール評価の公開インターフェースです。
type UseCase interface {
	CanUpdate(e *employee.Employee, changes Changes) UpdateResult
	NeedsDataRefresh(e *employee.Employee) RefreshAssessment
	ScoreCompleteness(e *employee.Employee) Completeness
	ResolveAccessLevel(e *employee.Employee) Access
	ActivityMetrics(e *employee.Employee) Activity
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。MinDaysBetweenUpdates が 0 以下なら既定値を使います。
func NewService(cfg Config, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if cfg.MinDaysBetweenUpdates <= 0 {
		cfg.MinDaysBetweenUpdates = DefaultConfig().MinDaysBetweenUpdates
	}
	return &Service{cfg: cfg, clock: clock}
}

// Config は設定のコピーを返します。
func (s *Service) Config() Config { return s.cfg }

func (s *Service) now() time.Time { return s.clock.Now().UTC() }

// elapsedDays は from から現在までの経過日数（小数）です。未来の場合は 0 です。
func (s *Service) elapsedDays(from time.Time) float64 {
	d := s.now().Sub(from.UTC()).Hours() / hoursPerDay
	if d < 0 {
		return 0
	}
	return d
}

func wholeDays(d float64) int {
	return int(math.Floor(d))
}
