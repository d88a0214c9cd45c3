package handler

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/codex-compliance-audit/internal/core/domainerr"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/employee"
	"github.com/ogurasousui/codex-compliance-audit/internal/core/report"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codeOf(err)
	st := status.New(code, err.Error())
	if code != codes.InvalidArgument {
		return st.Err()
	}
	if field := violatedField(err); field != "" {
		detailed, derr := st.WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: field, Description: err.Error()}},
		})
		if derr == nil {
			return detailed.Err()
		}
	}
	return st.Err()
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, employee.ErrEmailAlreadyUsed):
		return codes.AlreadyExists
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, report.ErrReportNotFound),
		errors.Is(err, report.ErrScheduleNotFound):
		return codes.NotFound
	case errors.Is(err, report.ErrRegenerationWindowExpired),
		errors.Is(err, report.ErrScheduleInactive):
		return codes.FailedPrecondition
	}

	kind, ok := domainerr.KindOf(err)
	if !ok {
		return codes.Internal
	}
	switch kind {
	case domainerr.KindValidation:
		return codes.InvalidArgument
	case domainerr.KindPolicyViolation:
		return codes.FailedPrecondition
	case domainerr.KindCapacity:
		return codes.ResourceExhausted
	case domainerr.KindNotFound:
		return codes.NotFound
	case domainerr.KindDependency:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func violatedField(err error) string {
	var iv *domainerr.InvalidValueError
	if errors.As(err, &iv) {
		return iv.Field
	}
	var de *domainerr.Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
