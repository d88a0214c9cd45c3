package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
)

const (
	yes = "Sí"
	no  = "No"
)

// Project は種別の列構成に合わせて社員を行に変換します。
func Project(t Type, employees []*employee.Employee) []Row {
	rows := make([]Row, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, projectOne(t, e))
	}
	return rows
}

func projectOne(t Type, e *employee.Employee) Row {
	row := Row{
		ColID:        e.ID(),
		ColFirstName: e.Name().First(),
		ColLastName:  e.Name().Last(),
	}
	profile := e.Profile()

	switch t.String() {
	case TypeMembers:
		row[ColEmail] = e.Email().String()
		row[ColTitle] = e.Title()
		row[ColDepartment] = e.Department().String()
		row[ColHireDate] = date(e.HiredAt())
		row[ColStatus] = e.Status().String()
	case TypeConflictOfInterest:
		row[ColEmail] = e.Email().String()
		row[ColTitle] = e.Title()
		row[ColDepartment] = e.Department().String()
		row[ColConflict] = yesNo(e.HasConflictOfInterest())
		row[ColUpdatedAt] = date(e.UpdatedAt())
	case TypeStudies:
		row[ColEducationLevel] = ""
		row[ColInstitution] = ""
		row[ColDegree] = ""
		row[ColGraduationYear] = ""
		if ed := profile.Education; ed != nil {
			row[ColEducationLevel] = ed.Level
			row[ColInstitution] = ed.Institution
			row[ColDegree] = ed.Degree
			if ed.GraduationYear > 0 {
				row[ColGraduationYear] = ed.GraduationYear
			}
		}
	case TypeContact:
		row[ColEmail] = e.Email().String()
		row[ColPhone] = ""
		row[ColAddress] = ""
		row[ColEmergencyContact] = ""
		row[ColRelationship] = ""
		if c := profile.Contact; c != nil {
			row[ColPhone] = c.Phone
			row[ColAddress] = c.Address
			row[ColEmergencyContact] = c.EmergencyContact
			row[ColRelationship] = c.EmergencyRelationship
		}
	case TypeDependents:
		row[ColHasDependents] = yesNo(profile.HasDependents())
		row[ColDependentCount] = len(profile.Dependents)
		row[ColRelationship] = strings.Join(lo.Map(profile.Dependents, func(d employee.Dependent, _ int) string {
			return d.Relationship
		}), ", ")
		row[ColDependentAges] = strings.Join(lo.Map(profile.Dependents, func(d employee.Dependent, _ int) string {
			return strconv.Itoa(d.Age)
		}), ", ")
	case TypeFull:
		row[ColEmail] = e.Email().String()
		row[ColTitle] = e.Title()
		row[ColDepartment] = e.Department().String()
		row[ColHireDate] = date(e.HiredAt())
		row[ColStatus] = e.Status().String()
		row[ColConflictShort] = yesNo(e.HasConflictOfInterest())
		row[ColUpdatedAt] = date(e.UpdatedAt())
	}
	return row
}

func date(t time.Time) string { return t.UTC().Format(time.DateOnly) }

func yesNo(v bool) string {
	if v {
		return yes
	}
	return no
}
