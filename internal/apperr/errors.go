package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDocument = errors.New("invalid document")
	ErrCompileFailed   = errors.New("compile failed")
)
