package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrContentNotFound is returned when the named object does not exist in a backend.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable is returned when a storage backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackend stores small named objects such as credentials and seeds.
type StorageBackend interface {
	// Fetch retrieves an object by name.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Store saves an object under name, replacing any previous value.
	Store(ctx context.Context, name string, data []byte) error

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// StorageBackendFactory creates storage backends from location URIs.
type StorageBackendFactory interface {
	// StorageBackendFor creates backend from URI.
	// Supports file://, s3://, ipfs://, vault://
	StorageBackendFor(locationURI string) (StorageBackend, error)

	// CreateMultiBackend creates aggregated storage backend.
	CreateMultiBackend(locationURIs []string) (StorageBackend, error)
}
