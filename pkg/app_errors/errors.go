package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrEventNotFound   = fmt.Errorf("event %w", ErrNotFound)
	ErrTicketNotFound  = fmt.Errorf("ticket %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)

	ErrDuplicateEmail      = errors.New("email already in use")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountExists       = errors.New("account already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")
)
