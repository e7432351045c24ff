package repository

import "errors"

// Sentinel errors shared by every repository implementation so services can
// branch without inspecting driver error strings.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)
