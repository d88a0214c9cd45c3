package employee

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/valueobject"
	"github.com/samber/lo"
)

const (
	maxEmailLength  = 254
	maxLocalLength  = 64
	maxDomainLength = 253

	// SuggestedEmailDomain は推奨メールアドレス生成に使うドメインです。
	SuggestedEmailDomain = "empresa.com"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var corporateDomains = []string{"empresa.com", "corporacion.co", "gane.com.co"}

var emailProviders = map[string]string{
	"gmail.com":   "gmail",
	"hotmail.com": "outlook",
	"outlook.com": "outlook",
	"live.com":    "outlook",
	"yahoo.com":   "yahoo",
	"yahoo.es":    "yahoo",
}

// Email は正規化済みのメールアドレスです。
type Email struct {
	value string
}

// NewEmail は前後の空白を除去し小文字化したうえでメールアドレスを検証します。
func NewEmail(raw string) (Email, error) {
	v, err := valueobject.Normalize(raw,
		func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
		emailNotEmpty,
		emailMatchesPattern,
		emailWithinLengths,
	)
	if err != nil {
		return Email{}, err
	}
	return Email{value: v}, nil
}

func emailNotEmpty(s string) error {
	if s == "" {
		return domainerr.InvalidValue(ErrInvalidEmail, "email", s, "must not be empty")
	}
	return nil
}

func emailMatchesPattern(s string) error {
	if !emailPattern.MatchString(s) {
		return domainerr.InvalidValue(ErrInvalidEmail, "email", s, "does not look like an email address")
	}
	return nil
}

func emailWithinLengths(s string) error {
	if utf8.RuneCountInString(s) > maxEmailLength {
		return domainerr.InvalidValue(ErrInvalidEmail, "email", s, fmt.Sprintf("must be at most %d characters", maxEmailLength))
	}
	local, domain, _ := strings.Cut(s, "@")
	if len(local) > maxLocalLength {
		return domainerr.InvalidValue(ErrInvalidEmail, "email", s, fmt.Sprintf("local part must be at most %d characters", maxLocalLength))
	}
	if len(domain) > maxDomainLength {
		return domainerr.InvalidValue(ErrInvalidEmail, "email", s, fmt.Sprintf("domain must be at most %d characters", maxDomainLength))
	}
	return nil
}

// String はメールアドレスを返します。
func (e Email) String() string { return e.value }

// Equal は同じアドレスかを判定します。
func (e Email) Equal(other Email) bool { return e.value == other.value }

// IsZero は未設定かを判定します。
func (e Email) IsZero() bool { return e.value == "" }

// Domain は @ 以降を返します。
func (e Email) Domain() string {
	_, domain, _ := strings.Cut(e.value, "@")
	return domain
}

// LocalPart は @ より前を返します。
func (e Email) LocalPart() string {
	local, _, _ := strings.Cut(e.value, "@")
	return local
}

// IsCorporate は社用ドメインかを判定します。
func (e Email) IsCorporate() bool {
	return lo.Contains(corporateDomains, e.Domain())
}

// Provider はメール提供元の分類を返します。
func (e Email) Provider() string {
	if e.IsCorporate() {
		return "corporativo"
	}
	if p, ok := emailProviders[e.Domain()]; ok {
		return p
	}
	return "otro"
}

// SecurityLevel は提供元に応じた信頼度です。
func (e Email) SecurityLevel() string {
	switch e.Provider() {
	case "corporativo":
		return "alto"
	case "gmail", "outlook":
		return "medio"
	default:
		return "bajo"
	}
}

// Masked はローカル部の先頭 3 文字以外を伏せた表記を返します。
func (e Email) Masked() string {
	local := []rune(e.LocalPart())
	if len(local) <= 3 {
		return string(local) + "***@" + e.Domain()
	}
	return string(local[:3]) + "***@" + e.Domain()
}

// MatchesName はローカル部が氏名から想定されるパターンを含むかを判定します。
func (e Email) MatchesName(first, last string) bool {
	n := compactLower(first)
	a := compactLower(last)
	if n == "" || a == "" {
		return false
	}
	local := e.LocalPart()
	ni := string([]rune(n)[:1])
	ai := string([]rune(a)[:1])
	patterns := []string{
		n + "." + a,
		n + a,
		a + "." + n,
		a + n,
		ni + a,
		n + ai,
		n,
		a,
	}
	for _, p := range patterns {
		if strings.Contains(local, p) {
			return true
		}
	}
	return false
}

// MatchesSearch はアドレス全体・ローカル部・ドメインのいずれかに語を含むかを判定します。
func (e Email) MatchesSearch(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	return strings.Contains(e.value, t)
}

// SuggestEmail は氏名から推奨アドレスを組み立てます。
func SuggestEmail(first, last string) (Email, error) {
	return NewEmail(compactLower(first) + "." + compactLower(last) + "@" + SuggestedEmailDomain)
}

func compactLower(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
