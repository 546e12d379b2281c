package services

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations. The engine uses it to
// hold the decision-option catalog between the turn that presents a decision
// point and the turn that answers it.
type Cache interface {
	// Ping tests the cache connection
	Ping(ctx context.Context) error

	// Set stores a key-value pair with optional expiration
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get retrieves a value by key. A missing key returns "" with no error.
	Get(ctx context.Context, key string) (string, error)

	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) error

	// Close closes the cache connection
	Close() error
}
