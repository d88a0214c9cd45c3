// Package admin は社員の一覧・参照・更新・評価のユースケースをまとめます。
package admin

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/policy"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Repository はユースケースが必要とする社員ストレージの組み合わせです。
type Repository interface {
	employee.Reader
	employee.Writer
	employee.Auditor
	employee.MetadataReader
}

// Invalidator は書き込みの確定後に読み取りキャッシュを破棄できるリポジトリです。
type Invalidator interface {
	Invalidate()
}

// Service は社員管理のユースケースをまとめます。
type Service struct {
	repo  Repository
	rules policy.UseCase
	clock Clock
	tx    TransactionManager
}

// UseCase は社員管理ユースケースの公開インターフェースです。
type UseCase interface {
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*query.Page, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*employee.Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*UpdateEmployeeResult, error)
	AssessEmployee(ctx context.Context, in GetEmployeeInput) (*Assessment, error)
	ChangeHistory(ctx context.Context, in GetEmployeeInput) ([]employee.ChangeRecord, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(repo Repository, rules policy.UseCase, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if rules == nil {
		rules = policy.NewService(policy.DefaultConfig(), clock)
	}
	return &Service{repo: repo, rules: rules, clock: clock, tx: tx}
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Criteria query.Criteria
}

// GetEmployeeInput は社員 1 件を指定する入力です。
type GetEmployeeInput struct {
	ID int64
}

// UpdateEmployeeInput は社員更新時の入力です。
type UpdateEmployeeInput struct {
	ID        int64
	Changes   policy.Changes
	ChangedBy int64
	Reason    string
}

// UpdateEmployeeResult は更新結果と業務ルールの警告です。
type UpdateEmployeeResult struct {
	Employee             *employee.Employee
	Changed              []string
	Warnings             []domainerr.Warning
	RequiresNotification bool
}

// Assessment は社員 1 件に対するルール評価の集約です。
type Assessment struct {
	Employee     *employee.Employee
	Refresh      policy.RefreshAssessment
	Completeness policy.Completeness
	Access       policy.Access
	Activity     policy.Activity
}

// FilterOptions は一覧画面の選択肢です。
type FilterOptions struct {
	Departments []string
	Statuses    []string
	Titles      []string
}

// ListEmployees は条件を最適化・検証し、適用した結果をページングして返します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*query.Page, error) {
	c := query.OptimizeCriteria(in.Criteria)
	if err := query.ValidateCriteria(c).Err(); err != nil {
		return nil, err
	}

	var all []*employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindAll(txCtx)
		if err != nil {
			return domainerr.Dependency("employees.find_all", err)
		}
		all = found
		return nil
	}); err != nil {
		return nil, err
	}

	page := query.Paginate(query.ApplyFilters(all, c), c.Page)
	page.AppliedFilters = query.Describe(c)
	return &page, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*employee.Employee, error) {
	if in.ID <= 0 {
		return nil, domainerr.InvalidValue(employee.ErrInvalidID, "id", strconv.FormatInt(in.ID, 10), "must be positive")
	}

	var result *employee.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.find(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateEmployee は業務ルールを評価したうえで変更を適用し、項目ごとに変更履歴を記録します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*UpdateEmployeeResult, error) {
	if in.ID <= 0 {
		return nil, domainerr.InvalidValue(employee.ErrInvalidID, "id", strconv.FormatInt(in.ID, 10), "must be positive")
	}

	var out *UpdateEmployeeResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.find(txCtx, in.ID)
		if err != nil {
			return err
		}

		verdict := s.rules.CanUpdate(existing, in.Changes)
		if !verdict.Valid {
			return verdict.Err()
		}

		// リポジトリが保持するインスタンスは書き換えません。
		working, err := employee.Rehydrate(existing.Attributes())
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		records, err := applyChanges(working, in.Changes, now)
		if err != nil {
			return err
		}

		out = &UpdateEmployeeResult{
			Employee:             existing,
			Warnings:             verdict.Warnings,
			RequiresNotification: verdict.RequiresNotification,
		}
		if len(records) == 0 {
			return nil
		}

		updated, err := s.repo.Update(txCtx, working)
		if err != nil {
			return domainerr.Dependency("employees.update", err)
		}
		for _, rec := range records {
			rec.EmployeeID = updated.ID()
			rec.ChangedBy = in.ChangedBy
			rec.Reason = in.Reason
			if err := s.repo.RecordChange(txCtx, rec); err != nil {
				return domainerr.Dependency("employees.record_change", err)
			}
			out.Changed = append(out.Changed, rec.Field)
		}
		out.Employee = updated
		return nil
	}); err != nil {
		return nil, err
	}
	if len(out.Changed) > 0 {
		if inv, ok := s.repo.(Invalidator); ok {
			inv.Invalidate()
		}
	}
	return out, nil
}

func applyChanges(e *employee.Employee, c policy.Changes, at time.Time) ([]employee.ChangeRecord, error) {
	var records []employee.ChangeRecord
	record := func(field, oldValue, newValue string) {
		records = append(records, employee.ChangeRecord{Field: field, OldValue: oldValue, NewValue: newValue, ChangedAt: at})
	}

	if c.Status != nil {
		status, err := employee.NewAccountStatus(*c.Status)
		if err != nil {
			return nil, err
		}
		if old := e.Status(); !old.Equal(status) {
			e.ChangeStatus(status, at)
			record("estado", old.String(), status.String())
		}
	}
	if c.Department != nil {
		dept, err := employee.NewDepartment(*c.Department)
		if err != nil {
			return nil, err
		}
		if old := e.Department(); !old.Equal(dept) {
			e.ChangeDepartment(dept, at)
			record("departamento", old.String(), dept.String())
		}
	}
	if c.Email != nil {
		email, err := employee.NewEmail(*c.Email)
		if err != nil {
			return nil, err
		}
		if old := e.Email(); !old.Equal(email) {
			e.ChangeEmail(email, at)
			record("email", old.String(), email.String())
		}
	}
	if c.Title != nil {
		if old := e.Title(); old != *c.Title {
			e.ChangeTitle(*c.Title, at)
			record("cargo", old, e.Title())
		}
	}
	if c.ConflictOfInterest != nil {
		if old := e.HasConflictOfInterest(); old != *c.ConflictOfInterest {
			e.SetConflictOfInterest(*c.ConflictOfInterest, at)
			record("conflicto_intereses", strconv.FormatBool(old), strconv.FormatBool(*c.ConflictOfInterest))
		}
	}
	return records, nil
}

// AssessEmployee は鮮度・完全性・権限・活動状況をまとめて評価します。
func (s *Service) AssessEmployee(ctx context.Context, in GetEmployeeInput) (*Assessment, error) {
	e, err := s.GetEmployee(ctx, in)
	if err != nil {
		return nil, err
	}
	return &Assessment{
		Employee:     e,
		Refresh:      s.rules.NeedsDataRefresh(e),
		Completeness: s.rules.ScoreCompleteness(e),
		Access:       s.rules.ResolveAccessLevel(e),
		Activity:     s.rules.ActivityMetrics(e),
	}, nil
}

// ChangeHistory は社員の変更履歴を返します。
func (s *Service) ChangeHistory(ctx context.Context, in GetEmployeeInput) ([]employee.ChangeRecord, error) {
	if _, err := s.GetEmployee(ctx, in); err != nil {
		return nil, err
	}
	var history []employee.ChangeRecord
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ChangeHistory(txCtx, in.ID)
		if err != nil {
			return domainerr.Dependency("employees.change_history", err)
		}
		history = found
		return nil
	}); err != nil {
		return nil, err
	}
	return history, nil
}

// FilterOptions は部署・状態・役職の選択肢を返します。
func (s *Service) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	var out FilterOptions
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		if out.Departments, err = s.repo.DistinctDepartments(txCtx); err != nil {
			return domainerr.Dependency("employees.distinct_departments", err)
		}
		if out.Statuses, err = s.repo.DistinctStatuses(txCtx); err != nil {
			return domainerr.Dependency("employees.distinct_statuses", err)
		}
		if out.Titles, err = s.repo.DistinctTitles(txCtx); err != nil {
			return domainerr.Dependency("employees.distinct_titles", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) find(ctx context.Context, id int64) (*employee.Employee, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			nf := domainerr.NotFound("empleado", id)
			nf.Err = err
			return nil, nf
		}
		return nil, domainerr.Dependency("employees.find_by_id", err)
	}
	return found, nil
}
