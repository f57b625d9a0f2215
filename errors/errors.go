package errors

import "fmt"

var (
	ErrStoreUnavailable  = fmt.Errorf("store unavailable")
	ErrInvalidMessage    = fmt.Errorf("invalid message")
	ErrStreamUnavailable = fmt.Errorf("change stream unavailable")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)
