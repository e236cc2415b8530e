package domain

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a uniqueness violation, e.g. subscribing an
	// email address that is already on the list.
	ErrDuplicate = errors.New("record already exists")
)
