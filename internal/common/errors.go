// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Aggregation errors. Any failed domain read aborts the whole snapshot;
	// a partial snapshot is never returned.
	ErrRepositoryFailure = errors.New("repository read failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// RepositoryError wraps a failed domain read with the domain that failed.
type RepositoryError struct {
	Err    error
	Domain string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository read failed for %s: %v", e.Domain, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrRepositoryFailure) match any wrapped read failure.
func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepositoryFailure
}

// NewRepositoryError wraps a domain read failure.
func NewRepositoryError(domain string, err error) error {
	return &RepositoryError{Domain: domain, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
