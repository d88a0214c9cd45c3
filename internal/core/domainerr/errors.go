// Package domainerr はドメイン全体で共有するエラー分類を提供します。
package domainerr

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind はエラーの分類です。
type Kind string

const (
	KindValidation      Kind = "validation"
	KindPolicyViolation Kind = "policy_violation"
	KindCapacity        Kind = "capacity"
	KindNotFound        Kind = "not_found"
	KindDependency      Kind = "dependency"
)

var (
	// ErrValidation は値オブジェクトや条件の検証失敗を表します。
	ErrValidation = errors.New("validation error")
	// ErrPolicyViolation は業務ルール違反を表します。
	ErrPolicyViolation = errors.New("policy violation")
	// ErrCapacity は処理上限の超過を表します。
	ErrCapacity = errors.New("capacity exceeded")
	// ErrNotFound は対象が存在しないことを表します。
	ErrNotFound = errors.New("not found")
	// ErrDependency は外部コラボレータの失敗を表します。
	ErrDependency = errors.New("dependency failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindPolicyViolation:
		return ErrPolicyViolation
	case KindCapacity:
		return ErrCapacity
	case KindNotFound:
		return ErrNotFound
	case KindDependency:
		return ErrDependency
	default:
		return nil
	}
}

// Error は種別・対象フィールド・メッセージを持つドメインエラーです。
type Error struct {
	Kind    Kind
	Field   string
	Message string
	// ID は NotFound の対象識別子など、エラーに紐づく値です。
	ID  string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" [")
		b.WriteString(e.Field)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.ID != "" {
		b.WriteString(" (id=")
		b.WriteString(e.ID)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap は原因エラーを返します。
func (e *Error) Unwrap() error {
	return e.Err
}

// Is は種別に対応する sentinel との比較を可能にします。
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Validation は検証エラーを生成します。
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// PolicyViolation は業務ルール違反エラーを生成します。
func PolicyViolation(field, format string, args ...any) *Error {
	return &Error{Kind: KindPolicyViolation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Capacity は上限超過エラーを生成します。
func Capacity(field string, limit, actual int) *Error {
	return &Error{
		Kind:    KindCapacity,
		Field:   field,
		Message: fmt.Sprintf("limit is %d, got %d", limit, actual),
	}
}

// NotFound は対象 ID を含む NotFound エラーを生成します。
func NotFound(resource string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Field:   resource,
		Message: resource + " does not exist",
		ID:      fmt.Sprint(id),
	}
}

// Dependency は外部コラボレータの失敗をスタック付きで包みます。
func Dependency(operation string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{
		Kind:    KindDependency,
		Field:   operation,
		Message: operation + " failed",
		Err:     errors.WithStack(cause),
	}
}

// KindOf はエラーチェーンから最初に見つかった Kind を返します。
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	var iv *InvalidValueError
	if errors.As(err, &iv) {
		return KindValidation, true
	}
	return "", false
}
