package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ComplianceServiceName は gRPC のサービス名です。
const ComplianceServiceName = "compliance.v1.ComplianceService"

const (
	MethodListEmployees         = "ListEmployees"
	MethodGetEmployee           = "GetEmployee"
	MethodUpdateEmployee        = "UpdateEmployee"
	MethodAssessEmployee        = "AssessEmployee"
	MethodListEmployeeChanges   = "ListEmployeeChanges"
	MethodGetFilterOptions      = "GetFilterOptions"
	MethodGetEmployeeStatistics = "GetEmployeeStatistics"
	MethodGenerateReport        = "GenerateReport"
	MethodRegenerateReport      = "RegenerateReport"
	MethodRunScheduledReport    = "RunScheduledReport"
	MethodListReportTypes       = "ListReportTypes"
)

// ComplianceServiceServer は ComplianceService のサーバー側インターフェースです。
// メッセージは google.protobuf.Struct で受け渡し、JSON の形でフィールドを定義します。
type ComplianceServiceServer interface {
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AssessEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployeeChanges(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFilterOptions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployeeStatistics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegenerateReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunScheduledReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListReportTypes(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ComplianceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ComplianceServiceDesc は ComplianceService のサービス定義です。
var ComplianceServiceDesc = grpc.ServiceDesc{
	ServiceName: ComplianceServiceName,
	HandlerType: (*ComplianceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodListEmployees, ComplianceServiceServer.ListEmployees),
		unary(MethodGetEmployee, ComplianceServiceServer.GetEmployee),
		unary(MethodUpdateEmployee, ComplianceServiceServer.UpdateEmployee),
		unary(MethodAssessEmployee, ComplianceServiceServer.AssessEmployee),
		unary(MethodListEmployeeChanges, ComplianceServiceServer.ListEmployeeChanges),
		unary(MethodGetFilterOptions, ComplianceServiceServer.GetFilterOptions),
		unary(MethodGetEmployeeStatistics, ComplianceServiceServer.GetEmployeeStatistics),
		unary(MethodGenerateReport, ComplianceServiceServer.GenerateReport),
		unary(MethodRegenerateReport, ComplianceServiceServer.RegenerateReport),
		unary(MethodRunScheduledReport, ComplianceServiceServer.RunScheduledReport),
		unary(MethodListReportTypes, ComplianceServiceServer.ListReportTypes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "compliance/v1/compliance.proto",
}

func unary(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ComplianceServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ComplianceServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FullMethod は "/compliance.v1.ComplianceService/<name>" 形式のメソッド名を返します。
func FullMethod(name string) string {
	return "/" + ComplianceServiceName + "/" + name
}

// RegisterComplianceServiceServer はサーバーにサービスを登録します。
func RegisterComplianceServiceServer(s grpc.ServiceRegistrar, srv ComplianceServiceServer) {
	s.RegisterService(&ComplianceServiceDesc, srv)
}

// ComplianceServiceClient は ComplianceService のクライアントです。
type ComplianceServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewComplianceServiceClient(cc grpc.ClientConnInterface) *ComplianceServiceClient {
	return &ComplianceServiceClient{cc: cc}
}

// Call は指定メソッドを呼び出します。req が nil の場合は空のメッセージを送ります。
func (c *ComplianceServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
