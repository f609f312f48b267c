package order

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNumberExists  = errors.New("order with this number already exists")
	ErrTaskNotFound       = errors.New("task not found on order")
	ErrInvalidTaskKind    = errors.New("invalid task kind")
	ErrWorkerNameRequired = errors.New("worker name is required")
)
