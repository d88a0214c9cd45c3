package employee

import "errors"

var (
	ErrInvalidID         = errors.New("employee: invalid id")
	ErrInvalidEmail      = errors.New("employee: invalid email")
	ErrInvalidFirstName  = errors.New("employee: invalid first name")
	ErrInvalidLastName   = errors.New("employee: invalid last name")
	ErrInvalidDepartment = errors.New("employee: invalid department")
	ErrInvalidStatus     = errors.New("employee: invalid status")
	ErrInvalidHireDate   = errors.New("employee: invalid hire date")
	ErrInvalidProfile    = errors.New("employee: invalid profile")
	ErrEmployeeNotFound  = errors.New("employee: not found")
	ErrEmailAlreadyUsed  = errors.New("employee: email already exists")
)
