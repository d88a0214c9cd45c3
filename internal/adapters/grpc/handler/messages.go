package handler

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/admin"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/policy"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/query"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

const dateLayout = "2006-01-02"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// decodeRequest は Struct を JSON 経由で型付きのリクエストに変換します。
func decodeRequest(in *structpb.Struct, out any) error {
	if in == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "request: %v", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return status.Errorf(codes.InvalidArgument, "request: %v", err)
	}
	return nil
}

func encodeResponse(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

type listEmployeesRequest struct {
	Criteria query.Criteria `json:"criteria"`
}

type employeeIDRequest struct {
	ID int64 `json:"id"`
}

type changesMessage struct {
	Status             *string `json:"status,omitempty"`
	Department         *string `json:"department,omitempty"`
	Email              *string `json:"email,omitempty"`
	Title              *string `json:"title,omitempty"`
	ConflictOfInterest *bool   `json:"conflictOfInterest,omitempty"`
}

type updateEmployeeRequest struct {
	ID        int64          `json:"id"`
	Changes   changesMessage `json:"changes"`
	ChangedBy int64          `json:"changedBy"`
	Reason    string         `json:"reason"`
}

type generateReportRequest struct {
	Type        string         `json:"type"`
	Format      string         `json:"format"`
	RequestedBy int64          `json:"requestedBy"`
	Criteria    query.Criteria `json:"criteria"`
}

type regenerateReportRequest struct {
	ReportID    int64           `json:"reportId"`
	Format      string          `json:"format,omitempty"`
	RequestedBy int64           `json:"requestedBy,omitempty"`
	Criteria    *query.Criteria `json:"criteria,omitempty"`
}

type runScheduledReportRequest struct {
	ScheduleID int64 `json:"scheduleId"`
}

type employeeMessage struct {
	ID                 int64  `json:"id"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	FullName           string `json:"fullName"`
	Email              string `json:"email"`
	Title              string `json:"title"`
	Department         string `json:"department"`
	Status             string `json:"status"`
	HiredAt            string `json:"hiredAt"`
	UpdatedAt          string `json:"updatedAt"`
	ConflictOfInterest bool   `json:"conflictOfInterest"`
}

type pageMessage struct {
	Employees      []employeeMessage `json:"employees"`
	Total          int               `json:"total"`
	Page           int               `json:"page"`
	Size           int               `json:"size"`
	TotalPages     int               `json:"totalPages"`
	HasPrev        bool              `json:"hasPrev"`
	HasNext        bool              `json:"hasNext"`
	AppliedFilters string            `json:"appliedFilters"`
}

type issueMessage struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type updateEmployeeResponse struct {
	Employee             employeeMessage `json:"employee"`
	Changed              []string        `json:"changed"`
	Warnings             []issueMessage  `json:"warnings"`
	RequiresNotification bool            `json:"requiresNotification"`
}

type refreshMessage struct {
	Required    bool   `json:"required"`
	Priority    string `json:"priority"`
	Reason      string `json:"reason"`
	DaysOverdue int    `json:"daysOverdue"`
	DueDate     string `json:"dueDate"`
}

type completenessMessage struct {
	Score         int      `json:"score"`
	Category      string   `json:"category"`
	MissingFields []string `json:"missingFields"`
	Suggestions   []string `json:"suggestions"`
}

type accessMessage struct {
	Level         string   `json:"level"`
	Permissions   []string `json:"permissions"`
	Restrictions  []string `json:"restrictions"`
	CanEdit       bool     `json:"canEdit"`
	NeedsApproval bool     `json:"needsApproval"`
}

type activityMessage struct {
	TenureMonths    int    `json:"tenureMonths"`
	DaysSinceUpdate int    `json:"daysSinceUpdate"`
	ActivityLevel   string `json:"activityLevel"`
	IsNewHire       bool   `json:"isNewHire"`
	NeedsFollowUp   bool   `json:"needsFollowUp"`
}

type assessmentMessage struct {
	Employee     employeeMessage     `json:"employee"`
	Refresh      refreshMessage      `json:"refresh"`
	Completeness completenessMessage `json:"completeness"`
	Access       accessMessage       `json:"access"`
	Activity     activityMessage     `json:"activity"`
}

type changeMessage struct {
	Field     string `json:"field"`
	OldValue  string `json:"oldValue"`
	NewValue  string `json:"newValue"`
	ChangedBy int64  `json:"changedBy"`
	ChangedAt string `json:"changedAt"`
	Reason    string `json:"reason"`
}

type changesResponse struct {
	EmployeeID int64           `json:"employeeId"`
	Changes    []changeMessage `json:"changes"`
}

type filterOptionsMessage struct {
	Departments []string `json:"departments"`
	Statuses    []string `json:"statuses"`
	Titles      []string `json:"titles"`
}

type departmentCountMessage struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
	Percent    int    `json:"percent"`
}

type statisticsMessage struct {
	Total        int                      `json:"total"`
	Active       int                      `json:"active"`
	Inactive     int                      `json:"inactive"`
	Suspended    int                      `json:"suspended"`
	InReview     int                      `json:"inReview"`
	Conflicted   int                      `json:"conflicted"`
	NeedsRefresh int                      `json:"needsRefresh"`
	ByDepartment []departmentCountMessage `json:"byDepartment"`
}

type fileMessage struct {
	Path      string `json:"path"`
	URL       string `json:"url"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"sizeBytes"`
}

type reportMessage struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"`
	TypeName    string       `json:"typeName"`
	Format      string       `json:"format"`
	CreatedAt   string       `json:"createdAt"`
	RequestedBy int64        `json:"requestedBy"`
	Columns     []string     `json:"columns"`
	Rows        []report.Row `json:"rows"`
	RowCount    int          `json:"rowCount"`
	FileName    string       `json:"fileName"`
	File        *fileMessage `json:"file,omitempty"`
}

type reportTypeMessage struct {
	Type                  string   `json:"type"`
	Name                  string   `json:"name"`
	Description           string   `json:"description"`
	Columns               []string `json:"columns"`
	RequiresSpecialFilter bool     `json:"requiresSpecialFilter"`
	CanRunWithoutFilters  bool     `json:"canRunWithoutFilters"`
}

type reportTypesResponse struct {
	Types []reportTypeMessage `json:"types"`
}

func (c changesMessage) toDomain() policy.Changes {
	return policy.Changes{
		Status:             c.Status,
		Department:         c.Department,
		Email:              c.Email,
		Title:              c.Title,
		ConflictOfInterest: c.ConflictOfInterest,
	}
}

func toEmployeeMessage(e *employee.Employee) employeeMessage {
	return employeeMessage{
		ID:                 e.ID(),
		FirstName:          e.Name().First(),
		LastName:           e.Name().Last(),
		FullName:           e.Name().Full(),
		Email:              e.Email().String(),
		Title:              e.Title(),
		Department:         e.Department().String(),
		Status:             e.Status().String(),
		HiredAt:            e.HiredAt().Format(dateLayout),
		UpdatedAt:          e.UpdatedAt().Format(time.RFC3339),
		ConflictOfInterest: e.HasConflictOfInterest(),
	}
}

func toEmployeeMessages(items []*employee.Employee) []employeeMessage {
	return lo.Map(items, func(e *employee.Employee, _ int) employeeMessage { return toEmployeeMessage(e) })
}

func toPageMessage(p *query.Page) pageMessage {
	return pageMessage{
		Employees:      toEmployeeMessages(p.Items),
		Total:          p.Total,
		Page:           p.Page,
		Size:           p.Size,
		TotalPages:     p.TotalPages,
		HasPrev:        p.HasPrev,
		HasNext:        p.HasNext,
		AppliedFilters: p.AppliedFilters,
	}
}

func toUpdateResponse(r *admin.UpdateEmployeeResult) updateEmployeeResponse {
	return updateEmployeeResponse{
		Employee: toEmployeeMessage(r.Employee),
		Changed:  lo.Ternary(r.Changed == nil, []string{}, r.Changed),
		Warnings: lo.Map(r.Warnings, func(w domainerr.Warning, _ int) issueMessage {
			return issueMessage{Field: w.Field, Code: w.Code, Message: w.Message}
		}),
		RequiresNotification: r.RequiresNotification,
	}
}

func toAssessmentMessage(a *admin.Assessment) assessmentMessage {
	out := assessmentMessage{
		Employee: toEmployeeMessage(a.Employee),
		Refresh: refreshMessage{
			Required:    a.Refresh.Required,
			Priority:    a.Refresh.Priority,
			Reason:      a.Refresh.Reason,
			DaysOverdue: a.Refresh.DaysOverdue,
		},
		Completeness: completenessMessage{
			Score:         a.Completeness.Score,
			Category:      a.Completeness.Category,
			MissingFields: a.Completeness.MissingFields,
			Suggestions:   a.Completeness.Suggestions,
		},
		Access: accessMessage{
			Level:         a.Access.Level,
			Permissions:   a.Access.Permissions,
			Restrictions:  a.Access.Restrictions,
			CanEdit:       a.Access.CanEdit,
			NeedsApproval: a.Access.NeedsApproval,
		},
		Activity: activityMessage{
			TenureMonths:    a.Activity.TenureMonths,
			DaysSinceUpdate: a.Activity.DaysSinceUpdate,
			ActivityLevel:   a.Activity.ActivityLevel,
			IsNewHire:       a.Activity.IsNewHire,
			NeedsFollowUp:   a.Activity.NeedsFollowUp,
		},
	}
	if !a.Refresh.DueDate.IsZero() {
		out.Refresh.DueDate = a.Refresh.DueDate.Format(dateLayout)
	}
	return out
}

func toChangesResponse(id int64, records []employee.ChangeRecord) changesResponse {
	return changesResponse{
		EmployeeID: id,
		Changes: lo.Map(records, func(c employee.ChangeRecord, _ int) changeMessage {
			return changeMessage{
				Field:     c.Field,
				OldValue:  c.OldValue,
				NewValue:  c.NewValue,
				ChangedBy: c.ChangedBy,
				ChangedAt: c.ChangedAt.Format(time.RFC3339),
				Reason:    c.Reason,
			}
		}),
	}
}

func toReportMessage(r *report.Report) reportMessage {
	out := reportMessage{
		ID:          r.ID(),
		Type:        r.Type().String(),
		TypeName:    r.Type().Name(),
		Format:      r.Format().String(),
		CreatedAt:   r.CreatedAt().Format(time.RFC3339),
		RequestedBy: r.RequestedBy(),
		Columns:     r.Columns(),
		Rows:        r.Rows(),
		RowCount:    r.RowCount(),
		FileName:    r.FileName(),
	}
	if f, ok := r.File(); ok {
		out.File = &fileMessage{Path: f.Path, URL: f.URL, Size: f.Size, SizeBytes: f.SizeBytes}
	}
	return out
}

func toReportTypes(items []report.TypeInfo) reportTypesResponse {
	return reportTypesResponse{
		Types: lo.Map(items, func(t report.TypeInfo, _ int) reportTypeMessage {
			return reportTypeMessage{
				Type:                  t.Type,
				Name:                  t.Name,
				Description:           t.Description,
				Columns:               t.Columns,
				RequiresSpecialFilter: t.RequiresSpecialFilter,
				CanRunWithoutFilters:  t.CanRunWithoutFilters,
			}
		}),
	}
}

func toStatisticsMessage(s *admin.Statistics) statisticsMessage {
	return statisticsMessage{
		Total:        s.Total,
		Active:       s.Active,
		Inactive:     s.Inactive,
		Suspended:    s.Suspended,
		InReview:     s.InReview,
		Conflicted:   s.Conflicted,
		NeedsRefresh: s.NeedsRefresh,
		ByDepartment: lo.Map(s.ByDepartment, func(d admin.DepartmentCount, _ int) departmentCountMessage {
			return departmentCountMessage{Department: d.Department, Count: d.Count, Percent: d.Percent}
		}),
	}
}
