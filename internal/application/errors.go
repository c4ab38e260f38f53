package application

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail        = errors.New("email already exists")
	ErrInvalidIDFormat       = errors.New("invalid id format")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountInactive       = errors.New("account is not active")
	ErrAlreadyActive         = errors.New("account is already active")
	ErrInvalidActivationCode = errors.New("invalid activation code")
	ErrActivationCodeExpired = errors.New("activation code expired")
	ErrStorageNotConfigured  = errors.New("object storage not configured")
	ErrInvalidQuery          = errors.New("invalid query")
)

// DuplicateEmailError carries the offending email. errors.Is(err, ErrDuplicateEmail) holds.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email already exists: %s, please use another email", e.Email)
}

func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}
