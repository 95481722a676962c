package repository

import (
	"errors"

	"github.com/okian/pitchtrack/internal/domain/accumulate"
)

// Sentinel kinds for store errors.
var (
	// ErrNotFound is the accumulator's not-found kind so an empty subject
	// reads as an empty batch.
	ErrNotFound      = accumulate.ErrNotFound
	ErrInvalidKey    = errors.New("invalid subject key")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrCorrupt       = errors.New("stored data is unreadable")
)
