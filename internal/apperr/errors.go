// Package apperr holds the sentinel errors shared across depot packages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrMissingProperty = errors.New("missing mandatory property")
	ErrUnknownPlugin   = errors.New("unknown plugin")
)
