package policy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/samber/lo"
)

// 優先度・分類・水準の値です。
const (
	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"

	CategoryExcellent = "excelente"
	CategoryGood      = "buena"
	CategoryFair      = "regular"
	CategoryPoor      = "deficiente"

	LevelBasic        = "basico"
	LevelIntermediate = "intermedio"
	LevelAdvanced     = "avanzado"
	LevelAdmin        = "administrador"

	ActivityHigh   = "alta"
	ActivityMedium = "media"
	ActivityLow    = "baja"
)

// 権限と制限の識別子です。
const (
	PermViewOwnProfile      = "ver_perfil_propio"
	PermUpdateOwnData       = "actualizar_datos_propios"
	PermBasicReports        = "generar_reportes_basicos"
	PermFullReports         = "ver_reportes_completos"
	PermExportData          = "exportar_datos"
	PermViewStatistics      = "ver_estadisticas"
	PermManageUsers         = "gestionar_usuarios"
	PermConfigureSystem     = "configurar_sistema"
	PermAuditAccess         = "acceso_auditoria"
	PermViewFinancial       = "ver_informacion_financiera"
	PermFinancialReports    = "generar_reportes_financieros"
	RestrictLimitedAccess   = "acceso_limitado"
	RestrictReadOnly        = "solo_lectura"
	RestrictConflictPending = "declaracion_conflicto_requerida"
)

// RefreshAssessment はデータ更新要否の評価です。
type RefreshAssessment struct {
	Required    bool
	Priority    string
	Reason      string
	DaysOverdue int
	DueDate     time.Time
}

// NeedsDataRefresh は最終更新から 365 日を超えた社員を更新対象とします。
func (s *Service) NeedsDataRefresh(e *employee.Employee) RefreshAssessment {
	days := s.elapsedDays(e.UpdatedAt())
	due := e.UpdatedAt().AddDate(0, 0, refreshWindowDays)

	if days <= refreshWindowDays {
		return RefreshAssessment{
			Priority: PriorityLow,
			Reason:   fmt.Sprintf("data updated %d days ago is within the %d day window", wholeDays(days), refreshWindowDays),
			DueDate:  due,
		}
	}

	priority := PriorityLow
	switch {
	case days > 2*refreshWindowDays:
		priority = PriorityHigh
	case days > 1.5*refreshWindowDays:
		priority = PriorityMedium
	}

	return RefreshAssessment{
		Required:    true,
		Priority:    priority,
		Reason:      fmt.Sprintf("data has not been updated for %d days", wholeDays(days)),
		DaysOverdue: wholeDays(days) - refreshWindowDays,
		DueDate:     due,
	}
}

// Completeness は基本項目の充足度です。
type Completeness struct {
	Score         int
	Category      string
	MissingFields []string
	Suggestions   []string
}

const pointsPerField = 20

// ScoreCompleteness は 5 項目を各 20 点で採点します。
func (s *Service) ScoreCompleteness(e *employee.Employee) Completeness {
	fields := []struct {
		name       string
		present    bool
		suggestion string
	}{
		{"nombre", e.Name().First() != "", "register the employee's first name"},
		{"apellido", e.Name().Last() != "", "register the employee's last name"},
		{"email", !e.Email().IsZero(), "register a corporate email address"},
		{"cargo", strings.TrimSpace(e.Title()) != "", "register the employee's job title"},
		{"departamento", e.Department().String() != "", "assign the employee to a department"},
	}

	var out Completeness
	points := 0
	for _, f := range fields {
		if f.present {
			points += pointsPerField
			continue
		}
		out.MissingFields = append(out.MissingFields, f.name)
		out.Suggestions = append(out.Suggestions, f.suggestion)
	}
	if !e.Email().IsZero() && !e.Email().IsCorporate() {
		out.Suggestions = append(out.Suggestions, "replace the personal email with a corporate one")
	}

	out.Score = int(math.Round(float64(points) / float64(len(fields)*pointsPerField) * 100))
	out.Category = CategoryFor(out.Score)
	return out
}

// CategoryFor は得点帯から分類を返します。
func CategoryFor(score int) string {
	switch {
	case score >= 95:
		return CategoryExcellent
	case score >= 80:
		return CategoryGood
	case score >= 60:
		return CategoryFair
	default:
		return CategoryPoor
	}
}

// Access は権限水準の評価です。
type Access struct {
	Level         string
	Permissions   []string
	Restrictions  []string
	CanEdit       bool
	NeedsApproval bool
}

// HasPermission は権限を含むかを判定します。
func (a Access) HasPermission(p string) bool { return lo.Contains(a.Permissions, p) }

// ResolveAccessLevel は部署の権限フラグから水準を決め、状態と利益相反で制限します。
func (s *Service) ResolveAccessLevel(e *employee.Employee) Access {
	dept := e.Department()
	status := e.Status()

	acc := Access{
		Level:       LevelBasic,
		Permissions: []string{PermViewOwnProfile, PermUpdateOwnData},
	}
	if status.CanGenerateReports() {
		acc.Level = LevelIntermediate
		acc.Permissions = append(acc.Permissions, PermBasicReports)
	}
	if dept.CanViewFullReports() {
		acc.Level = LevelAdvanced
		acc.Permissions = append(acc.Permissions, PermFullReports, PermExportData, PermViewStatistics)
	}
	if dept.CanManagePersonnel() {
		acc.Level = LevelAdmin
		acc.Permissions = append(acc.Permissions, PermManageUsers, PermConfigureSystem, PermAuditAccess)
	}
	if dept.CanAccessFinancialData() {
		acc.Permissions = append(acc.Permissions, PermViewFinancial, PermFinancialReports)
	}

	if !status.IsActive() {
		acc.Level = LevelBasic
		acc.Permissions = []string{PermViewOwnProfile}
		acc.Restrictions = append(acc.Restrictions, RestrictLimitedAccess, RestrictReadOnly)
	}
	if e.HasConflictOfInterest() {
		acc.Restrictions = append(acc.Restrictions, RestrictConflictPending)
	}

	acc.Permissions = lo.Uniq(acc.Permissions)
	acc.CanEdit = status.IsActive() && !lo.Contains(acc.Restrictions, RestrictReadOnly)
	acc.NeedsApproval = e.HasConflictOfInterest() || isManagerTitle(e.Title())
	return acc
}

// Activity は在籍期間と更新状況の指標です。
type Activity struct {
	TenureMonths    int
	DaysSinceUpdate int
	ActivityLevel   string
	IsNewHire       bool
	NeedsFollowUp   bool
}

// ActivityMetrics は 30 日 / 180 日を閾値に活動水準を判定します。
func (s *Service) ActivityMetrics(e *employee.Employee) Activity {
	tenureDays := wholeDays(s.elapsedDays(e.HiredAt()))
	sinceUpdate := wholeDays(s.elapsedDays(e.UpdatedAt()))

	level := ActivityLow
	switch {
	case sinceUpdate <= 30:
		level = ActivityHigh
	case sinceUpdate <= 180:
		level = ActivityMedium
	}

	months := tenureDays / 30
	return Activity{
		TenureMonths:    months,
		DaysSinceUpdate: sinceUpdate,
		ActivityLevel:   level,
		IsNewHire:       months <= 3,
		NeedsFollowUp:   sinceUpdate > refreshWindowDays || e.HasConflictOfInterest(),
	}
}

func isManagerTitle(title string) bool {
	return strings.Contains(strings.ToLower(title), "gerente")
}
