// Package storage defines the interface for persisting completed output
// parts. The abstraction keeps the pipeline independent of the backing store
// (local filesystem or Google Cloud Storage).
package storage

import "context"

// Provider persists one completed output part and returns its URI. It
// matches the pipeline's PartWriter contract.
type Provider interface {
	WritePart(ctx context.Context, name string, data []byte) (string, error)
}
