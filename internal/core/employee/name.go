package employee

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/valueobject"
	"github.com/samber/lo"
)

const minNamePartLength = 2

var reservedNames = []string{"admin", "administrator", "system", "test", "demo"}

// PersonName は名と姓の組です。
type PersonName struct {
	first string
	last  string
}

// NewPersonName は名と姓をそれぞれ検証して PersonName を生成します。
func NewPersonName(first, last string) (PersonName, error) {
	f, err := valueobject.Normalize(first, strings.TrimSpace, namePartRule(ErrInvalidFirstName, "first_name"))
	if err != nil {
		return PersonName{}, err
	}
	l, err := valueobject.Normalize(last, strings.TrimSpace, namePartRule(ErrInvalidLastName, "last_name"))
	if err != nil {
		return PersonName{}, err
	}
	return PersonName{first: f, last: l}, nil
}

// PersonNameFromText は最後の単語を姓とみなして分割します。
func PersonNameFromText(full string) (PersonName, error) {
	words := strings.Fields(full)
	if len(words) < 2 {
		return PersonName{}, domainerr.InvalidValue(ErrInvalidLastName, "full_name", full, "must contain first and last name")
	}
	return NewPersonName(strings.Join(words[:len(words)-1], " "), words[len(words)-1])
}

func namePartRule(sentinel error, field string) valueobject.Rule[string] {
	return func(s string) error {
		if utf8.RuneCountInString(s) < minNamePartLength {
			return domainerr.InvalidValue(sentinel, field, s, "must have at least 2 letters")
		}
		for _, r := range s {
			if !unicode.IsLetter(r) && r != ' ' {
				return domainerr.InvalidValue(sentinel, field, s, "may only contain letters and spaces")
			}
		}
		return nil
	}
}

func (n PersonName) First() string { return n.first }

func (n PersonName) Last() string { return n.last }

// Full は "名 姓" 形式です。
func (n PersonName) Full() string { return n.first + " " + n.last }

// Formal は "姓（大文字）, 名" 形式です。
func (n PersonName) Formal() string { return strings.ToUpper(n.last) + ", " + n.first }

// LastFirst は "姓, 名" 形式です。
func (n PersonName) LastFirst() string { return n.last + ", " + n.first }

// Initials は名と姓の頭文字です。
func (n PersonName) Initials() string {
	return strings.ToUpper(firstRune(n.first) + firstRune(n.last))
}

// Short は名と姓の頭文字を組み合わせた短縮表記です。
func (n PersonName) Short() string {
	return strings.Fields(n.first)[0] + " " + strings.ToUpper(firstRune(n.last)) + "."
}

// IsReserved は予約語を含む名前かを判定します。
func (n PersonName) IsReserved() bool {
	full := strings.ToLower(n.Full())
	return lo.SomeBy(reservedNames, func(r string) bool { return strings.Contains(full, r) })
}

// Equal は大文字小文字を区別せず比較します。
func (n PersonName) Equal(other PersonName) bool {
	return strings.EqualFold(n.first, other.first) && strings.EqualFold(n.last, other.last)
}

func (n PersonName) String() string { return n.Full() }

// MatchesSearch は氏名全体の部分一致、頭文字一致、または語単位の一致を判定します。
func (n PersonName) MatchesSearch(term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	full := strings.ToLower(n.Full())
	if strings.Contains(full, t) {
		return true
	}
	if strings.ToLower(n.Initials()) == strings.ReplaceAll(t, ".", "") {
		return true
	}
	nameWords := strings.Fields(full)
	for _, tw := range strings.Fields(t) {
		if !lo.SomeBy(nameWords, func(w string) bool { return strings.Contains(w, tw) }) {
			return false
		}
	}
	return true
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(r)
}
