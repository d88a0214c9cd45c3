package report

import (
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/valueobject"
)

const (
	TypeMembers            = "integrantes"
	TypeConflictOfInterest = "conflicto-intereses"
	TypeStudies            = "estudios"
	TypeContact            = "contacto"
	TypeDependents         = "personas-cargo"
	TypeFull               = "completo"
)

// 列名です。行データのキーとしても使います。
const (
	ColID               = "ID"
	ColFirstName        = "Nombre"
	ColLastName         = "Apellido"
	ColEmail            = "Email"
	ColTitle            = "Cargo"
	ColDepartment       = "Departamento"
	ColHireDate         = "Fecha Ingreso"
	ColStatus           = "Estado"
	ColConflict         = "Conflicto de Intereses"
	ColConflictShort    = "Conflicto Intereses"
	ColUpdatedAt        = "Última Actualización"
	ColEducationLevel   = "Nivel Educativo"
	ColInstitution      = "Institución"
	ColDegree           = "Título"
	ColGraduationYear   = "Año Graduación"
	ColPhone            = "Teléfono"
	ColAddress          = "Dirección"
	ColEmergencyContact = "Contacto Emergencia"
	ColRelationship     = "Parentesco"
	ColHasDependents    = "Tiene Personas a Cargo"
	ColDependentCount   = "Número de Personas"
	ColDependentAges    = "Edades"
)

type typeInfo struct {
	name          string
	description   string
	columns       []string
	specialFilter bool
	noFilters     bool
}

var typeOrder = []string{TypeMembers, TypeConflictOfInterest, TypeStudies, TypeContact, TypeDependents, TypeFull}

var typeCatalog = map[string]typeInfo{
	TypeMembers: {
		name:        "Reporte de Integrantes",
		description: "Listado general de empleados con sus datos básicos",
		columns:     []string{ColID, ColFirstName, ColLastName, ColEmail, ColTitle, ColDepartment, ColHireDate, ColStatus},
		noFilters:   true,
	},
	TypeConflictOfInterest: {
		name:          "Reporte de Conflicto de Intereses",
		description:   "Empleados con declaración de conflicto de intereses",
		columns:       []string{ColID, ColFirstName, ColLastName, ColEmail, ColTitle, ColDepartment, ColConflict, ColUpdatedAt},
		specialFilter: true,
	},
	TypeStudies: {
		name:        "Reporte de Estudios",
		description: "Información académica de los empleados",
		columns:     []string{ColID, ColFirstName, ColLastName, ColEducationLevel, ColInstitution, ColDegree, ColGraduationYear},
	},
	TypeContact: {
		name:        "Reporte de Contacto",
		description: "Datos de contacto y contacto de emergencia",
		columns:     []string{ColID, ColFirstName, ColLastName, ColPhone, ColEmail, ColAddress, ColEmergencyContact, ColRelationship},
	},
	TypeDependents: {
		name:          "Reporte de Personas a Cargo",
		description:   "Empleados con personas a cargo y su parentesco",
		columns:       []string{ColID, ColFirstName, ColLastName, ColHasDependents, ColDependentCount, ColRelationship, ColDependentAges},
		specialFilter: true,
	},
	TypeFull: {
		name:        "Reporte Completo",
		description: "Toda la información disponible de los empleados",
		columns:     []string{ColID, ColFirstName, ColLastName, ColEmail, ColTitle, ColDepartment, ColHireDate, ColStatus, ColConflictShort, ColUpdatedAt},
		noFilters:   true,
	},
}

// Type はカタログに属するレポート種別です。
type Type struct {
	value string
}

// NewType は前後空白を除き小文字化して種別を検証します。
func NewType(raw string) (Type, error) {
	v, err := valueobject.Normalize(raw,
		func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
		func(s string) error {
			if _, ok := typeCatalog[s]; !ok {
				return domainerr.InvalidValue(ErrInvalidType, "tipo", s, "is not in the report type catalog")
			}
			return nil
		},
	)
	if err != nil {
		return Type{}, err
	}
	return Type{value: v}, nil
}

func (t Type) String() string { return t.value }

func (t Type) Equal(other Type) bool { return t.value == other.value }

func (t Type) Name() string { return typeCatalog[t.value].name }

func (t Type) Description() string { return typeCatalog[t.value].description }

// Columns は固定の列順を返します。
func (t Type) Columns() []string {
	return append([]string(nil), typeCatalog[t.value].columns...)
}

// FileBaseName は "reporte_<種別>" 形式のファイル名の基部です。
func (t Type) FileBaseName() string {
	return "reporte_" + strings.ReplaceAll(t.value, "-", "_")
}

// RequiresSpecialFilter は専用の絞り込みが前提となる種別かを判定します。
func (t Type) RequiresSpecialFilter() bool { return typeCatalog[t.value].specialFilter }

// CanRunWithoutFilters は条件なしでも生成できる種別かを判定します。
func (t Type) CanRunWithoutFilters() bool { return typeCatalog[t.value].noFilters }

// TypeInfo はカタログの 1 件分です。
type TypeInfo struct {
	Type                  string
	Name                  string
	Description           string
	Columns               []string
	RequiresSpecialFilter bool
	CanRunWithoutFilters  bool
}

// Catalog はカタログ順の種別一覧を返します。
func Catalog() []TypeInfo {
	out := make([]TypeInfo, 0, len(typeOrder))
	for _, v := range typeOrder {
		t := Type{value: v}
		out = append(out, TypeInfo{
			Type:                  v,
			Name:                  t.Name(),
			Description:           t.Description(),
			Columns:               t.Columns(),
			RequiresSpecialFilter: t.RequiresSpecialFilter(),
			CanRunWithoutFilters:  t.CanRunWithoutFilters(),
		})
	}
	return out
}
