package employee

import (
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/valueobject"
	"github.com/samber/lo"
)

const (
	StatusActive    = "activo"
	StatusInactive  = "inactivo"
	StatusSuspended = "suspendido"
	StatusInReview  = "en-revision"
)

var statusCatalog = []string{StatusActive, StatusInactive, StatusSuspended, StatusInReview}

// AccountStatus はアカウント状態です。
type AccountStatus struct {
	value string
}

// NewAccountStatus は大文字小文字を区別せず状態を検証します。
func NewAccountStatus(raw string) (AccountStatus, error) {
	v, err := valueobject.Normalize(raw,
		func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
		func(s string) error {
			if !lo.Contains(statusCatalog, s) {
				return domainerr.InvalidValue(ErrInvalidStatus, "status", s, "must be one of activo, inactivo, suspendido, en-revision")
			}
			return nil
		},
	)
	if err != nil {
		return AccountStatus{}, err
	}
	return AccountStatus{value: v}, nil
}

// Statuses は状態カタログです。
func Statuses() []string {
	return append([]string(nil), statusCatalog...)
}

// IsStatus はカタログに含まれるかを判定します。
func IsStatus(raw string) bool {
	return lo.Contains(statusCatalog, strings.ToLower(strings.TrimSpace(raw)))
}

func (s AccountStatus) String() string { return s.value }

func (s AccountStatus) Equal(other AccountStatus) bool { return s.value == other.value }

func (s AccountStatus) IsActive() bool { return s.value == StatusActive }

func (s AccountStatus) IsInactive() bool { return s.value == StatusInactive }

func (s AccountStatus) IsSuspended() bool { return s.value == StatusSuspended }

func (s AccountStatus) IsInReview() bool { return s.value == StatusInReview }

// CanAccessSystem は activo と en-revision のみ true です。
func (s AccountStatus) CanAccessSystem() bool { return s.IsActive() || s.IsInReview() }

// CanGenerateReports は activo のみ true です。
func (s AccountStatus) CanGenerateReports() bool { return s.IsActive() }

func mustStatus(v string) AccountStatus {
	return valueobject.Must(NewAccountStatus(v))
}
