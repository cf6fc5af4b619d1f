package service

import (
	"errors"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrConflict           = repository.ErrConflict
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("store is not assigned to this user")
	// ErrStaleSelection is returned when a newer selection for the same slot
	// replaced the one being loaded.
	ErrStaleSelection = errors.New("selection was superseded")
)
