package domain

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrBackend            = errors.New("backend request failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrInvalidSession     = errors.New("session has no token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownForm        = errors.New("unknown form")
)
