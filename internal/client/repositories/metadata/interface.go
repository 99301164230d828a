// Package metadata persists small key/value facts about the local client,
// most importantly the active session.
package metadata

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("metadata key not found")

type Repository interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
