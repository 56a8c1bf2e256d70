package collection

import "errors"

var (
	ErrFormat      = errors.New("invalid collection format")
	ErrConsistency = errors.New("collection consistency violation")
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("invalid input")
)
