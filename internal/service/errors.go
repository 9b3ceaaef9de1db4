package service

import "errors"

// Service errors.
//
// ErrCodeNotFound is deliberately indistinguishable from an expired or
// never-issued code so the API leaks no existence information.
var (
	ErrSlugNotFound  = errors.New("slug not found")
	ErrCodeFormat    = errors.New("code is malformed")
	ErrCodeSignature = errors.New("code signature invalid")
	ErrCodeNotFound  = errors.New("code not found")
)
