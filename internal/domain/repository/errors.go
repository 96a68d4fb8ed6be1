package repository

import "errors"

var (
	// ErrDuplicateKey is returned when an insert violates a unique key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrEmptyQuestion is returned when a query is created without question text.
	ErrEmptyQuestion = errors.New("question text is required")
	// ErrNotFound is returned by updates targeting a missing row.
	ErrNotFound = errors.New("record not found")
	// ErrNotPending is returned when a verification targets an already decided query.
	ErrNotPending = errors.New("query is not pending")
)
