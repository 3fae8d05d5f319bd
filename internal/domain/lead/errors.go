package lead

import "errors"

var (
	ErrLeadNotFound     = errors.New("lead not found")
	ErrSchemaMissing    = errors.New("lead form not configured")
	ErrInvalidSchema    = errors.New("invalid lead form")
	ErrUnknownField     = errors.New("unknown form field")
	ErrFieldNotEditable = errors.New("field not editable for this role")
)
