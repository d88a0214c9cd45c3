package policy

import (
	"fmt"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

// Changes は更新候補です。nil の項目は変更しません。
type Changes struct {
	Status             *string
	Department         *string
	Email              *string
	Title              *string
	ConflictOfInterest *bool
}

// UpdateResult は CanUpdate の評価結果です。
type UpdateResult struct {
	Valid                bool
	Errors               []domainerr.Violation
	Warnings             []domainerr.Warning
	RequiresNotification bool
}

// Err は違反があれば PolicyViolation エラーを返します。
func (r UpdateResult) Err() error {
	return domainerr.Violations(r.Errors)
}

const (
	CodeInvalidValue          = "invalid_value"
	CodeConflictHighAccess    = "conflict_high_access_department"
	CodeNonCorporateEmail     = "non_corporate_email"
	CodeEmailNameMismatch     = "email_name_mismatch"
	CodeReactivatingSuspended = "reactivating_suspended"
	CodeSuspendingActive      = "suspending_active"
	CodeReviewWithConflict    = "review_with_conflict"
	CodeLosesFinancialAccess  = "loses_financial_access"
	CodeGainsFinancialAccess  = "gains_financial_access"
	CodeGainsPersonnelAccess  = "gains_personnel_management"
	CodeRecentlyUpdated       = "recently_updated"
	CodeConflictDeclared      = "conflict_declared"
	CodeManagerApproval       = "manager_approval_required"
)

// CanUpdate は変更候補を評価します。警告は処理を止めず、エラーがあれば Valid は false です。
func (s *Service) CanUpdate(e *employee.Employee, changes Changes) UpdateResult {
	var res UpdateResult
	violate := func(field, code, format string, args ...any) {
		res.Errors = append(res.Errors, domainerr.Violation{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}
	warn := func(field, code, format string, args ...any) {
		res.Warnings = append(res.Warnings, domainerr.Warning{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	conflict := e.HasConflictOfInterest()
	if changes.ConflictOfInterest != nil {
		if *changes.ConflictOfInterest && !conflict {
			warn("conflicto_intereses", CodeConflictDeclared, "declaring a conflict of interest restricts report access and requires approval")
		}
		conflict = *changes.ConflictOfInterest
	}

	important := false

	if changes.Status != nil {
		next, err := employee.NewAccountStatus(*changes.Status)
		if err != nil {
			violate("estado", CodeInvalidValue, "%v", err)
		} else if !next.Equal(e.Status()) {
			important = true
			cur := e.Status()
			switch {
			case cur.IsSuspended() && next.IsActive():
				warn("estado", CodeReactivatingSuspended, "reactivating a suspended employee; confirm the suspension cause was resolved")
			case cur.IsActive() && next.IsSuspended():
				warn("estado", CodeSuspendingActive, "suspending an active employee revokes system access")
			}
			if next.IsInReview() && conflict {
				warn("estado", CodeReviewWithConflict, "employee under review has a declared conflict of interest")
			}
		}
	}

	if changes.Department != nil {
		next, err := employee.NewDepartment(*changes.Department)
		if err != nil {
			violate("departamento", CodeInvalidValue, "%v", err)
		} else {
			cur := e.Department()
			if !next.Equal(cur) {
				important = true
				if cur.CanAccessFinancialData() && !next.CanAccessFinancialData() {
					warn("departamento", CodeLosesFinancialAccess, "moving from %s to %s removes access to financial data", cur, next)
				}
				if !cur.CanAccessFinancialData() && next.CanAccessFinancialData() {
					warn("departamento", CodeGainsFinancialAccess, "moving to %s grants access to financial data", next)
				}
				if !cur.CanManagePersonnel() && next.CanManagePersonnel() {
					warn("departamento", CodeGainsPersonnelAccess, "moving to %s grants personnel management access", next)
				}
			}
			if conflict && next.AccessTier() == employee.AccessTierHigh {
				violate("departamento", CodeConflictHighAccess, "an employee with a conflict of interest cannot be moved to %s", next)
			}
		}
	}

	if changes.Email != nil {
		next, err := employee.NewEmail(*changes.Email)
		if err != nil {
			violate("email", CodeInvalidValue, "%v", err)
		} else {
			if !next.IsCorporate() {
				violate("email", CodeNonCorporateEmail, "email %s must use a corporate domain", next)
			}
			name := e.Name()
			if !next.MatchesName(name.First(), name.Last()) {
				violate("email", CodeEmailNameMismatch, "email %s does not resemble the name %s", next, name.Full())
			}
		}
	}

	if s.cfg.RequiresManagerApproval && (isManagerTitle(e.Title()) || (changes.Title != nil && isManagerTitle(*changes.Title))) {
		warn("cargo", CodeManagerApproval, "changes to a manager record must be approved by a manager")
	}

	if days := s.elapsedDays(e.UpdatedAt()); days < float64(s.cfg.MinDaysBetweenUpdates) {
		warn("ultima_actualizacion", CodeRecentlyUpdated, "record was updated %d days ago; minimum interval is %d days", wholeDays(days), s.cfg.MinDaysBetweenUpdates)
	}

	res.Valid = len(res.Errors) == 0
	res.RequiresNotification = res.Valid && important && s.cfg.NotifyOnImportantChanges
	return res
}
