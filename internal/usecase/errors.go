package usecase

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email already registered")
	ErrNotFound             = errors.New("not found")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrLimitReached         = errors.New("plan limit reached")
	ErrInvalidTransition    = errors.New("invalid status transition")
)
