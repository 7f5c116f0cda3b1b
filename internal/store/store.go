// Package store hands out one-time passwords. Every backend removes the rows it
// returns in the same operation, so a password is never given out twice.
package store

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientRows is returned when the store holds fewer passwords
	// than requested. Nothing is removed then.
	ErrInsufficientRows = errors.New("insufficient passwords in store")
	// ErrTransientStore is returned when the store kept failing after all
	// retries.
	ErrTransientStore = errors.New("password store unavailable")

	errBadCount = errors.New("count must be positive")
)

// Store of passwords.
type Store interface {
	// FetchAndDelete returns count passwords in store order and removes them.
	FetchAndDelete(ctx context.Context, count int) ([]string, error)
}
