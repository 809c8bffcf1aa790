package services

import (
	"context"

	"gainboard/internal/domain/entities"
)

// SnapshotLoader fetches the full set of tracked instruments, ranked
// descending by 24h price change percent. It either returns the whole
// snapshot or an error, never a partial result.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) ([]*entities.Instrument, error)
}

// StreamTransport owns the streaming connection lifecycle. The core only
// consumes its callbacks and may request a reconnect at any time.
type StreamTransport interface {
	Run(ctx context.Context) error
	RequestReconnect()
	Close() error
}
