// Package storage defines the entity store contract. Records are opaque byte
// slices addressed by (owner, record id); the store never interprets them.
package storage

import "context"

// Store persists an owner's entity records.
//
// Load returns (nil, nil) for an absent record. SaveBatch must apply every
// write for the owner or none of them.
type Store interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	Load(ctx context.Context, ownerID, recordID string) ([]byte, error)
	Save(ctx context.Context, ownerID, recordID string, data []byte) error
	SaveBatch(ctx context.Context, ownerID string, records map[string][]byte) error
}
