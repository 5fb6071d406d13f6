package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Storage holds uploaded dispute evidence.
type Storage interface {
	Write(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
	// URL returns the address clients use to fetch the object at path.
	URL(path string) string
}
