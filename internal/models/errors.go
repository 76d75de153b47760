package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnsortableInput  = errors.New("input is not chronologically sortable")
	ErrDuplicateKey     = errors.New("duplicate key violation")
)
