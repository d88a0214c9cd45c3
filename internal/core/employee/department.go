package employee

import (
	"strings"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/valueobject"
	"github.com/samber/lo"
)

// 部署カタログ。値は表示名そのものです。
const (
	DeptHumanResources = "Recursos Humanos"
	DeptTechnology     = "Tecnología"
	DeptFinance        = "Finanzas"
	DeptMarketing      = "Marketing"
	DeptSales          = "Ventas"
	DeptOperations     = "Operaciones"
	DeptLegal          = "Legal"
	DeptAudit          = "Auditoría"
	DeptPurchasing     = "Compras"
	DeptAdministration = "Administración"
)

// AccessTier は部署に紐づくアクセス水準です。
type AccessTier string

const (
	AccessTierLow    AccessTier = "bajo"
	AccessTierMedium AccessTier = "medio"
	AccessTierHigh   AccessTier = "alto"
)

type departmentInfo struct {
	code        string
	description string
	group       string
	parent      string
}

var departmentCatalog = map[string]departmentInfo{
	DeptHumanResources: {code: "RH", description: "Gestión del talento humano y bienestar", group: "administrativo", parent: DeptAdministration},
	DeptTechnology:     {code: "TI", description: "Sistemas, infraestructura y desarrollo", group: "tecnico", parent: DeptAdministration},
	DeptFinance:        {code: "FIN", description: "Contabilidad, tesorería y presupuesto", group: "administrativo", parent: DeptAdministration},
	DeptMarketing:      {code: "MKT", description: "Mercadeo y comunicaciones", group: "comercial", parent: DeptOperations},
	DeptSales:          {code: "VNT", description: "Gestión comercial y clientes", group: "comercial", parent: DeptOperations},
	DeptOperations:     {code: "OPS", description: "Operación y logística", group: "operativo", parent: DeptAdministration},
	DeptLegal:          {code: "LEG", description: "Asuntos jurídicos y cumplimiento", group: "administrativo", parent: DeptAdministration},
	DeptAudit:          {code: "AUD", description: "Control interno y auditoría", group: "tecnico", parent: DeptAdministration},
	DeptPurchasing:     {code: "COM", description: "Compras y proveedores", group: "operativo", parent: DeptOperations},
	DeptAdministration: {code: "ADM", description: "Dirección y administración general", group: "administrativo"},
}

var departmentOrder = []string{
	DeptHumanResources, DeptTechnology, DeptFinance, DeptMarketing, DeptSales,
	DeptOperations, DeptLegal, DeptAudit, DeptPurchasing, DeptAdministration,
}

var (
	fullReportDepartments = []string{DeptHumanResources, DeptAudit, DeptAdministration}
	personnelDepartments  = []string{DeptHumanResources, DeptAdministration}
	financialDepartments  = []string{DeptFinance, DeptAudit, DeptAdministration}
)

// Department はカタログに属する部署です。
type Department struct {
	name string
}

// NewDepartment は部署名を検証します。
func NewDepartment(raw string) (Department, error) {
	v, err := valueobject.Normalize(raw, strings.TrimSpace, func(s string) error {
		if s == "" {
			return domainerr.InvalidValue(ErrInvalidDepartment, "department", s, "must not be empty")
		}
		if _, ok := departmentCatalog[s]; !ok {
			return domainerr.InvalidValue(ErrInvalidDepartment, "department", s, "is not in the department catalog")
		}
		return nil
	})
	if err != nil {
		return Department{}, err
	}
	return Department{name: v}, nil
}

// Departments はカタログ順の部署一覧です。
func Departments() []string {
	return append([]string(nil), departmentOrder...)
}

// IsDepartment はカタログに含まれるかを判定します。
func IsDepartment(name string) bool {
	_, ok := departmentCatalog[strings.TrimSpace(name)]
	return ok
}

func (d Department) String() string { return d.name }

func (d Department) Equal(other Department) bool { return d.name == other.name }

func (d Department) Code() string { return departmentCatalog[d.name].code }

func (d Department) Description() string { return departmentCatalog[d.name].description }

// Group は部署の系統（tecnico / administrativo / comercial / operativo）です。
func (d Department) Group() string { return departmentCatalog[d.name].group }

// Parent は上位部署を返します。最上位の場合は false です。
func (d Department) Parent() (Department, bool) {
	p := departmentCatalog[d.name].parent
	if p == "" {
		return Department{}, false
	}
	return Department{name: p}, true
}

// CanViewFullReports は完全なレポートを閲覧できる部署かを判定します。
func (d Department) CanViewFullReports() bool { return lo.Contains(fullReportDepartments, d.name) }

// CanManagePersonnel は人事管理権限を持つ部署かを判定します。
func (d Department) CanManagePersonnel() bool { return lo.Contains(personnelDepartments, d.name) }

// CanAccessFinancialData は財務情報にアクセスできる部署かを判定します。
func (d Department) CanAccessFinancialData() bool { return lo.Contains(financialDepartments, d.name) }

// AccessTier は部署のアクセス水準を返します。
func (d Department) AccessTier() AccessTier {
	switch {
	case d.name == DeptAdministration:
		return AccessTierHigh
	case d.CanViewFullReports():
		return AccessTierMedium
	default:
		return AccessTierLow
	}
}
