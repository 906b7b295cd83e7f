package services

import (
	"errors"
	"fmt"
)

// Failure taxonomy for every service operation. Handlers map these to HTTP
// status codes at the boundary; nothing below the handler layer knows about
// HTTP.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient reward balance")
)

var (
	ErrSelfReferral    = fmt.Errorf("%w: cannot use your own referral code", ErrValidation)
	ErrAlreadyReferred = fmt.Errorf("%w: user was already referred", ErrConflict)
)
