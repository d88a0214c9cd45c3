package employee

import (
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
)

// Education は学歴情報です。
type Education struct {
	Level          string
	Institution    string
	Degree         string
	GraduationYear int
}

// Contact は連絡先情報です。
type Contact struct {
	Phone                 string
	Address               string
	EmergencyContact      string
	EmergencyRelationship string
}

// Dependent は扶養家族 1 名分の情報です。
type Dependent struct {
	Name         string
	Relationship string
	Age          int
}

// Profile は申告フォームで収集されるコンプライアンス情報です。各項目は任意です。
type Profile struct {
	Education  *Education
	Contact    *Contact
	Dependents []Dependent
}

// HasDependents は扶養家族がいるかを判定します。
func (p Profile) HasDependents() bool { return len(p.Dependents) > 0 }

func (p Profile) clone() Profile {
	out := Profile{}
	if p.Education != nil {
		edu := *p.Education
		out.Education = &edu
	}
	if p.Contact != nil {
		c := *p.Contact
		out.Contact = &c
	}
	if len(p.Dependents) > 0 {
		out.Dependents = append([]Dependent(nil), p.Dependents...)
	}
	return out
}

func (p Profile) normalized() (Profile, error) {
	out := p.clone()
	if out.Education != nil {
		out.Education.Level = strings.TrimSpace(out.Education.Level)
		out.Education.Institution = strings.TrimSpace(out.Education.Institution)
		out.Education.Degree = strings.TrimSpace(out.Education.Degree)
		if out.Education.GraduationYear < 0 {
			return Profile{}, domainerr.InvalidValue(ErrInvalidProfile, "education.graduation_year", "", "must not be negative")
		}
	}
	if out.Contact != nil {
		out.Contact.Phone = strings.TrimSpace(out.Contact.Phone)
		out.Contact.Address = strings.TrimSpace(out.Contact.Address)
		out.Contact.EmergencyContact = strings.TrimSpace(out.Contact.EmergencyContact)
		out.Contact.EmergencyRelationship = strings.TrimSpace(out.Contact.EmergencyRelationship)
	}
	for i := range out.Dependents {
		out.Dependents[i].Name = strings.TrimSpace(out.Dependents[i].Name)
		out.Dependents[i].Relationship = strings.TrimSpace(out.Dependents[i].Relationship)
		if out.Dependents[i].Age < 0 {
			return Profile{}, domainerr.InvalidValue(ErrInvalidProfile, "dependents.age", "", "must not be negative")
		}
	}
	return out, nil
}
