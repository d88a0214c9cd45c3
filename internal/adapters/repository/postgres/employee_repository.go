package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-compliance-audit/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const employeeColumns = `id, first_name, last_name, email, title, department, status, hired_at, updated_at, conflict_of_interest, profile`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

var (
	_ employee.Reader         = (*EmployeeRepository)(nil)
	_ employee.Writer         = (*EmployeeRepository)(nil)
	_ employee.Searcher       = (*EmployeeRepository)(nil)
	_ employee.MetadataReader = (*EmployeeRepository)(nil)
	_ employee.Auditor        = (*EmployeeRepository)(nil)
)

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// FindAll は全社員を ID 順で取得します。
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]*employee.Employee, error) {
	return r.list(ctx, "")
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// Save は社員を新規作成します。
func (r *EmployeeRepository) Save(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	a := e.Attributes()
	profile, err := encodeProfile(a.Profile)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (first_name, last_name, email, title, department, status, hired_at, updated_at, conflict_of_interest, profile)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+employeeColumns+`
    `,
		a.FirstName,
		a.LastName,
		a.Email,
		a.Title,
		a.Department,
		a.Status,
		dateOnly(a.HiredAt),
		a.UpdatedAt,
		a.ConflictOfInterest,
		profile,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	a := e.Attributes()
	profile, err := encodeProfile(a.Profile)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET first_name = $1,
               last_name = $2,
               email = $3,
               title = $4,
               department = $5,
               status = $6,
               hired_at = $7,
               updated_at = $8,
               conflict_of_interest = $9,
               profile = $10
         WHERE id = $11
        RETURNING `+employeeColumns+`
    `,
		a.FirstName,
		a.LastName,
		a.Email,
		a.Title,
		a.Department,
		a.Status,
		dateOnly(a.HiredAt),
		a.UpdatedAt,
		a.ConflictOfInterest,
		profile,
		a.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// SearchByText は氏名・メール・役職の部分一致で検索します。
func (r *EmployeeRepository) SearchByText(ctx context.Context, text string) ([]*employee.Employee, error) {
	term := strings.TrimSpace(text)
	if term == "" {
		return r.FindAll(ctx)
	}
	return r.list(ctx, `
         WHERE first_name ILIKE $1
            OR last_name ILIKE $1
            OR email ILIKE $1
            OR title ILIKE $1`, "%"+escapeLike(term)+"%")
}

func (r *EmployeeRepository) FindByDepartment(ctx context.Context, d employee.Department) ([]*employee.Employee, error) {
	return r.list(ctx, ` WHERE department = $1`, d.String())
}

func (r *EmployeeRepository) FindByStatus(ctx context.Context, s employee.AccountStatus) ([]*employee.Employee, error) {
	return r.list(ctx, ` WHERE status = $1`, s.String())
}

func (r *EmployeeRepository) FindWithConflict(ctx context.Context) ([]*employee.Employee, error) {
	return r.list(ctx, ` WHERE conflict_of_interest`)
}

func (r *EmployeeRepository) DistinctDepartments(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "department")
}

func (r *EmployeeRepository) DistinctStatuses(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "status")
}

func (r *EmployeeRepository) DistinctTitles(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "title")
}

// RecordChange は変更履歴を 1 件追加します。
func (r *EmployeeRepository) RecordChange(ctx context.Context, c employee.ChangeRecord) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	_, err := exec.Exec(ctx, `
        INSERT INTO employee_changes (employee_id, field, old_value, new_value, changed_by, changed_at, reason)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, c.EmployeeID, c.Field, c.OldValue, c.NewValue, c.ChangedBy, c.ChangedAt.UTC(), c.Reason)
	return translateEmployeePgError(err)
}

// ChangeHistory は社員の変更履歴を新しい順に返します。
func (r *EmployeeRepository) ChangeHistory(ctx context.Context, employeeID int64) ([]employee.ChangeRecord, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT employee_id, field, old_value, new_value, changed_by, changed_at, reason
          FROM employee_changes
         WHERE employee_id = $1
         ORDER BY changed_at DESC, id DESC
    `, employeeID)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	history := make([]employee.ChangeRecord, 0)
	for rows.Next() {
		var c employee.ChangeRecord
		if err := rows.Scan(&c.EmployeeID, &c.Field, &c.OldValue, &c.NewValue, &c.ChangedBy, &c.ChangedAt, &c.Reason); err != nil {
			return nil, err
		}
		c.ChangedAt = c.ChangedAt.UTC()
		history = append(history, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return history, nil
}

func (r *EmployeeRepository) list(ctx context.Context, where string, args ...any) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees`+where+`
         ORDER BY id
    `, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

// distinct は列名を固定値でしか受け取らないため、識別子をそのまま埋め込みます。
func (r *EmployeeRepository) distinct(ctx context.Context, column string) ([]string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT DISTINCT `+column+`
          FROM employees
         WHERE `+column+` <> ''
         ORDER BY `+column+`
    `)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return values, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		a       employee.Attributes
		profile []byte
	)

	if err := row.Scan(
		&a.ID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.Title,
		&a.Department,
		&a.Status,
		&a.HiredAt,
		&a.UpdatedAt,
		&a.ConflictOfInterest,
		&profile,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	p, err := decodeProfile(profile)
	if err != nil {
		return nil, err
	}
	a.Profile = p
	a.HiredAt = dateOnly(a.HiredAt)

	return employee.Rehydrate(a)
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmailAlreadyUsed
		case foreignKeyViolationCode:
			return employee.ErrEmployeeNotFound
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "employees_status_check":
				return employee.ErrInvalidStatus
			case "employees_department_check":
				return employee.ErrInvalidDepartment
			default:
				return err
			}
		}
	}

	return err
}

type profileDocument struct {
	Education  *educationDocument  `json:"education,omitempty"`
	Contact    *contactDocument    `json:"contact,omitempty"`
	Dependents []dependentDocument `json:"dependents,omitempty"`
}

type educationDocument struct {
	Level          string `json:"level"`
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

type contactDocument struct {
	Phone                 string `json:"phone"`
	Address               string `json:"address"`
	EmergencyContact      string `json:"emergency_contact"`
	EmergencyRelationship string `json:"emergency_relationship"`
}

type dependentDocument struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Age          int    `json:"age"`
}

func encodeProfile(p employee.Profile) ([]byte, error) {
	doc := profileDocument{}
	if p.Education != nil {
		doc.Education = &educationDocument{
			Level:          p.Education.Level,
			Institution:    p.Education.Institution,
			Degree:         p.Education.Degree,
			GraduationYear: p.Education.GraduationYear,
		}
	}
	if p.Contact != nil {
		doc.Contact = &contactDocument{
			Phone:                 p.Contact.Phone,
			Address:               p.Contact.Address,
			EmergencyContact:      p.Contact.EmergencyContact,
			EmergencyRelationship: p.Contact.EmergencyRelationship,
		}
	}
	for _, d := range p.Dependents {
		doc.Dependents = append(doc.Dependents, dependentDocument{Name: d.Name, Relationship: d.Relationship, Age: d.Age})
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode profile: %w", err)
	}
	return b, nil
}

func decodeProfile(raw []byte) (employee.Profile, error) {
	if len(raw) == 0 {
		return employee.Profile{}, nil
	}
	var doc profileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return employee.Profile{}, fmt.Errorf("postgres: decode profile: %w", err)
	}

	p := employee.Profile{}
	if doc.Education != nil {
		p.Education = &employee.Education{
			Level:          doc.Education.Level,
			Institution:    doc.Education.Institution,
			Degree:         doc.Education.Degree,
			GraduationYear: doc.Education.GraduationYear,
		}
	}
	if doc.Contact != nil {
		p.Contact = &employee.Contact{
			Phone:                 doc.Contact.Phone,
			Address:               doc.Contact.Address,
			EmergencyContact:      doc.Contact.EmergencyContact,
			EmergencyRelationship: doc.Contact.EmergencyRelationship,
		}
	}
	for _, d := range doc.Dependents {
		p.Dependents = append(p.Dependents, employee.Dependent{Name: d.Name, Relationship: d.Relationship, Age: d.Age})
	}
	return p, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
