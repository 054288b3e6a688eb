package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyTaken  = errors.New("email already taken")
)

// NotFoundError reports that a referenced user does not exist. It is a client
// error: callers surface it and never retry.
type NotFoundError struct {
	Entity string
	Id     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.Id)
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
