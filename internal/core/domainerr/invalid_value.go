package domainerr

import "fmt"

// InvalidValueError は値オブジェクトの生成失敗を表します。
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string

	sentinel error
}

// InvalidValue は InvalidValueError を生成します。sentinel は errors.Is で照合可能になります。
func InvalidValue(sentinel error, field, value, reason string) *InvalidValueError {
	return &InvalidValueError{Field: field, Value: value, Reason: reason, sentinel: sentinel}
}

func (e *InvalidValueError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap は個別 sentinel と ErrValidation の両方を返します。
func (e *InvalidValueError) Unwrap() []error {
	if e.sentinel == nil {
		return []error{ErrValidation}
	}
	return []error{e.sentinel, ErrValidation}
}

// Violation はルール違反の 1 件を表すデータです。
type Violation struct {
	Field   string
	Code    string
	Message string
}

// Warning は処理を止めない注意事項です。
type Warning struct {
	Field   string
	Code    string
	Message string
}

// Violations は違反一覧を 1 つの PolicyViolation エラーにまとめます。空なら nil です。
func Violations(items []Violation) error {
	if len(items) == 0 {
		return nil
	}
	first := items[0]
	msg := first.Message
	if len(items) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", first.Message, len(items)-1)
	}
	return &Error{Kind: KindPolicyViolation, Field: first.Field, Message: msg}
}
