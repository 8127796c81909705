package taproom

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrNotAssigned     = errors.New("tap not assigned")
	ErrPersistence     = errors.New("persistence failure")
)
