package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/admin"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

// ComplianceGrpcHandler は ComplianceService の gRPC 実装です。
type ComplianceGrpcHandler struct {
	employees admin.UseCase
	reports   report.UseCase
}

var _ ComplianceServiceServer = (*ComplianceGrpcHandler)(nil)

// NewComplianceGrpcHandler は ComplianceGrpcHandler を生成します。
func NewComplianceGrpcHandler(employees admin.UseCase, reports report.UseCase) *ComplianceGrpcHandler {
	return &ComplianceGrpcHandler{employees: employees, reports: reports}
}

// ListEmployees は条件に合う社員を 1 ページ分返します。
func (h *ComplianceGrpcHandler) ListEmployees(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listEmployeesRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}

	page, err := h.employees.ListEmployees(ctx, admin.ListEmployeesInput{Criteria: req.Criteria})
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(toPageMessage(page))
}

// GetEmployee は社員を取得します。
func (h *ComplianceGrpcHandler) GetEmployee(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeEmployeeID(in)
	if err != nil {
		return nil, err
	}

	found, err := h.employees.GetEmployee(ctx, admin.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(map[string]any{"employee": toEmployeeMessage(found)})
}

// UpdateEmployee は業務ルールを評価したうえで社員情報を更新します。
func (h *ComplianceGrpcHandler) UpdateEmployee(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req updateEmployeeRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	result, err := h.employees.UpdateEmployee(ctx, admin.UpdateEmployeeInput{
		ID:        req.ID,
		Changes:   req.Changes.toDomain(),
		ChangedBy: req.ChangedBy,
		Reason:    req.Reason,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(toUpdateResponse(result))
}

// AssessEmployee は社員 1 件の評価結果を返します。
func (h *ComplianceGrpcHandler) AssessEmployee(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeEmployeeID(in)
	if err != nil {
		return nil, err
	}

	assessment, err := h.employees.AssessEmployee(ctx, admin.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(toAssessmentMessage(assessment))
}

// ListEmployeeChanges は社員の変更履歴を新しい順に返します。
func (h *ComplianceGrpcHandler) ListEmployeeChanges(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := decodeEmployeeID(in)
	if err != nil {
		return nil, err
	}

	records, err := h.employees.ChangeHistory(ctx, admin.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(toChangesResponse(id, records))
}

// GetFilterOptions は一覧画面の選択肢を返します。
func (h *ComplianceGrpcHandler) GetFilterOptions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	opts, err := h.employees.FilterOptions(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(filterOptionsMessage{
		Departments: opts.Departments,
		Statuses:    opts.Statuses,
		Titles:      opts.Titles,
	})
}

// GetEmployeeStatistics は社員全体の集計を返します。
func (h *ComplianceGrpcHandler) GetEmployeeStatistics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	stats, err := h.employees.Statistics(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(toStatisticsMessage(stats))
}

// GenerateReport は条件から母集団を組み立ててレポートを生成します。
func (h *ComplianceGrpcHandler) GenerateReport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req generateReportRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}

	r, err := h.reports.GenerateFromCriteria(ctx, report.CriteriaRequest{
		Type:        req.Type,
		Format:      req.Format,
		RequestedBy: req.RequestedBy,
		Criteria:    req.Criteria,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(map[string]any{"report": toReportMessage(r)})
}

// RegenerateReport は既存レポートを作り直します。
func (h *ComplianceGrpcHandler) RegenerateReport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req regenerateReportRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if req.ReportID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "reportId is required")
	}

	r, err := h.reports.Regenerate(ctx, report.RegenerateRequest{
		ReportID:    req.ReportID,
		Format:      req.Format,
		RequestedBy: req.RequestedBy,
		Criteria:    req.Criteria,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(map[string]any{"report": toReportMessage(r)})
}

// RunScheduledReport は定期設定 1 件を即時実行します。
func (h *ComplianceGrpcHandler) RunScheduledReport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req runScheduledReportRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if req.ScheduleID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "scheduleId is required")
	}

	r, err := h.reports.RunScheduled(ctx, req.ScheduleID)
	if err != nil {
		return nil, toStatusError(err)
	}
	return encodeResponse(map[string]any{"report": toReportMessage(r)})
}

// ListReportTypes はレポート種別のカタログを返します。
func (h *ComplianceGrpcHandler) ListReportTypes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return encodeResponse(toReportTypes(report.Catalog()))
}

func decodeEmployeeID(in *structpb.Struct) (int64, error) {
	var req employeeIDRequest
	if err := decodeRequest(in, &req); err != nil {
		return 0, err
	}
	if req.ID <= 0 {
		return 0, status.Error(codes.InvalidArgument, "id is required")
	}
	return req.ID, nil
}
