package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested path does not exist in the source.
var ErrNotFound = errors.New("not found")

// Source provides read access to a tree of catalog files. The template
// catalog is deploy-time data, so the interface is deliberately read-only.
type Source interface {
	Read(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}
