package models

import "errors"

// Custom errors
var (
	ErrInsufficientData = errors.New("insufficient historical data")
	ErrNotFound         = errors.New("record not found")
	ErrInvalidID        = errors.New("invalid ID format")
	ErrTransientData    = errors.New("transient data layer failure")
	ErrInvalidStatType  = errors.New("unknown stat type")
)
