package employee

import (
	"strings"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
)

// Attributes は社員のプリミティブ表現です。永続化と生成の入出力に使います。
type Attributes struct {
	ID                 int64
	FirstName          string
	LastName           string
	Email              string
	Title              string
	Department         string
	Status             string
	HiredAt            time.Time
	UpdatedAt          time.Time
	ConflictOfInterest bool
	Profile            Profile
}

// Employee は社員エンティティです。状態の変更は業務メソッド経由でのみ行います。
type Employee struct {
	id         int64
	name       PersonName
	email      Email
	title      string
	department Department
	hiredAt    time.Time
	status     AccountStatus
	updatedAt  time.Time
	conflict   bool
	profile    Profile
}

// New は属性を検証して社員を生成します。UpdatedAt が未指定なら HiredAt を用います。
func New(a Attributes) (*Employee, error) {
	if a.ID < 0 {
		return nil, domainerr.InvalidValue(ErrInvalidID, "id", "", "must not be negative")
	}
	name, err := NewPersonName(a.FirstName, a.LastName)
	if err != nil {
		return nil, err
	}
	email, err := NewEmail(a.Email)
	if err != nil {
		return nil, err
	}
	dept, err := NewDepartment(a.Department)
	if err != nil {
		return nil, err
	}
	status, err := NewAccountStatus(a.Status)
	if err != nil {
		return nil, err
	}
	if a.HiredAt.IsZero() {
		return nil, domainerr.InvalidValue(ErrInvalidHireDate, "hired_at", "", "must be set")
	}
	profile, err := a.Profile.normalized()
	if err != nil {
		return nil, err
	}

	updated := a.UpdatedAt
	if updated.IsZero() {
		updated = a.HiredAt
	}

	return &Employee{
		id:         a.ID,
		name:       name,
		email:      email,
		title:      strings.TrimSpace(a.Title),
		department: dept,
		hiredAt:    a.HiredAt.UTC(),
		status:     status,
		updatedAt:  updated.UTC(),
		conflict:   a.ConflictOfInterest,
		profile:    profile,
	}, nil
}

// Rehydrate は永続化済みの属性から社員を復元します。
func Rehydrate(a Attributes) (*Employee, error) {
	if a.ID <= 0 {
		return nil, domainerr.InvalidValue(ErrInvalidID, "id", "", "persisted employee must have an id")
	}
	return New(a)
}

// Attributes は現在の状態をプリミティブに戻します。
func (e *Employee) Attributes() Attributes {
	return Attributes{
		ID:                 e.id,
		FirstName:          e.name.First(),
		LastName:           e.name.Last(),
		Email:              e.email.String(),
		Title:              e.title,
		Department:         e.department.String(),
		Status:             e.status.String(),
		HiredAt:            e.hiredAt,
		UpdatedAt:          e.updatedAt,
		ConflictOfInterest: e.conflict,
		Profile:            e.profile.clone(),
	}
}

// WithID は採番済み ID を持つ複製を返します。
func (e *Employee) WithID(id int64) *Employee {
	c := *e
	c.id = id
	c.profile = e.profile.clone()
	return &c
}

func (e *Employee) ID() int64 { return e.id }

func (e *Employee) Name() PersonName { return e.name }

func (e *Employee) Email() Email { return e.email }

func (e *Employee) Title() string { return e.title }

func (e *Employee) Department() Department { return e.department }

func (e *Employee) HiredAt() time.Time { return e.hiredAt }

func (e *Employee) Status() AccountStatus { return e.status }

func (e *Employee) UpdatedAt() time.Time { return e.updatedAt }

func (e *Employee) HasConflictOfInterest() bool { return e.conflict }

func (e *Employee) Profile() Profile { return e.profile.clone() }

// Activate は社員を有効化します。
func (e *Employee) Activate(at time.Time) { e.changeStatus(StatusActive, at) }

// Deactivate は社員を無効化します。
func (e *Employee) Deactivate(at time.Time) { e.changeStatus(StatusInactive, at) }

// Suspend は社員を停止します。
func (e *Employee) Suspend(at time.Time) { e.changeStatus(StatusSuspended, at) }

// MarkInReview は社員を確認中にします。
func (e *Employee) MarkInReview(at time.Time) { e.changeStatus(StatusInReview, at) }

// ChangeStatus は任意の状態へ変更します。
func (e *Employee) ChangeStatus(status AccountStatus, at time.Time) {
	e.status = status
	e.touch(at)
}

func (e *Employee) changeStatus(v string, at time.Time) {
	e.ChangeStatus(mustStatus(v), at)
}

// ChangeDepartment は所属部署を変更します。
func (e *Employee) ChangeDepartment(d Department, at time.Time) {
	e.department = d
	e.touch(at)
}

// ChangeTitle は役職を変更します。
func (e *Employee) ChangeTitle(title string, at time.Time) {
	e.title = strings.TrimSpace(title)
	e.touch(at)
}

// ChangeEmail はメールアドレスを変更します。
func (e *Employee) ChangeEmail(email Email, at time.Time) {
	e.email = email
	e.touch(at)
}

// SetConflictOfInterest は利益相反フラグを設定します。
func (e *Employee) SetConflictOfInterest(v bool, at time.Time) {
	e.conflict = v
	e.touch(at)
}

// ToggleConflictOfInterest は利益相反フラグを反転します。
func (e *Employee) ToggleConflictOfInterest(at time.Time) {
	e.SetConflictOfInterest(!e.conflict, at)
}

// UpdateProfile はコンプライアンス情報を差し替えます。
func (e *Employee) UpdateProfile(p Profile, at time.Time) error {
	normalized, err := p.normalized()
	if err != nil {
		return err
	}
	e.profile = normalized
	e.touch(at)
	return nil
}

func (e *Employee) touch(at time.Time) {
	e.updatedAt = at.UTC()
}
