package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("role not recognized")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrFieldNotRecognized = errors.New("field not recognized")
	ErrPodcastNotFound    = errors.New("podcast not found")
	ErrPasswordTooLong    = errors.New("password too long")
)

// PersistenceError wraps a storage failure that is not one of the expected
// domain outcomes above (connection loss, write conflicts, driver errors).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError for op. Nil stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
