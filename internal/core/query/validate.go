package query

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/samber/lo"
)

// FieldError は検証失敗 1 件です。
type FieldError struct {
	Field   string
	Message string
}

// ValidationResult は ValidateCriteria の結果です。
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// Err は検証エラーを domainerr の検証エラーとしてまとめます。有効なら nil です。
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, fe := range r.Errors {
		errs = append(errs, domainerr.Validation(fe.Field, "%s", fe.Message))
	}
	return errors.Join(errs...)
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCriteria は適用前の条件を検証します。
func ValidateCriteria(c Criteria) ValidationResult {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	checkRange := func(field string, r DateRange) {
		if r.From != nil && r.To != nil && r.From.After(inclusiveUpper(*r.To)) {
			add(field, "start date must not be after end date")
		}
	}
	checkRange("fechaIngreso", c.HireDate)
	checkRange("ultimaActualizacion", c.UpdatedAt)

	for _, s := range nonEmpty(append([]string{c.Status}, c.Statuses...)) {
		if !employee.IsStatus(s) {
			add("estado", "unknown status %q", s)
		}
	}
	for _, d := range nonEmpty(append([]string{c.Department}, c.Departments...)) {
		if !employee.IsDepartment(d) {
			add("departamento", "unknown department %q", d)
		}
	}

	for i, fq := range c.FieldQueries {
		field := fmt.Sprintf("camposBusqueda[%d]", i)
		if !lo.Contains(knownFields, fq.Field) {
			add(field+".campo", "unknown search field %q", fq.Field)
		}
		if strings.TrimSpace(fq.Value) == "" {
			add(field+".valor", "search value must not be empty")
		}
		if fq.Operator != "" && !lo.Contains(knownOperators, fq.Operator) {
			add(field+".operador", "unknown operator %q", fq.Operator)
		}
	}

	if c.Page != nil {
		errs = append(errs, structErrors("paginacion", c.Page)...)
	}
	if c.Sort != nil {
		errs = append(errs, structErrors("orden", c.Sort)...)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func nonEmpty(values []string) []string {
	return lo.Compact(lo.Map(values, func(s string, _ int) string { return strings.TrimSpace(s) }))
}

func structErrors(prefix string, v any) []FieldError {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: prefix, Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: prefix + "." + fe.Field(), Message: tagMessage(fe)})
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
