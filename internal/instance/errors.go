package instance

import "errors"

var (
	ErrLoad         = errors.New("failed to load collection")
	ErrExpired      = errors.New("collection expired, please re-upload")
	ErrNoCollection = errors.New("no collection found")
)
