package report

import "errors"

var (
	ErrInvalidType               = errors.New("report: invalid report type")
	ErrInvalidFormat             = errors.New("report: invalid output format")
	ErrInvalidColumns            = errors.New("report: at least one column is required")
	ErrInvalidRowCount           = errors.New("report: row count must not be negative")
	ErrEmptyEmployeeSet          = errors.New("report: employee set is empty")
	ErrTooManyEmployees          = errors.New("report: employee set exceeds the limit")
	ErrNoConflictedEmployees     = errors.New("report: no employee with a conflict of interest")
	ErrFileAlreadyAttached       = errors.New("report: file already attached")
	ErrReportNotFound            = errors.New("report: not found")
	ErrRegenerationWindowExpired = errors.New("report: regeneration window expired")
	ErrScheduleNotFound          = errors.New("report: schedule not found")
	ErrScheduleInactive          = errors.New("report: schedule is inactive")
	ErrIllegalTransition         = errors.New("report: illegal state transition")
	ErrMissingCollaborator       = errors.New("report: collaborator not configured")
)
