package usecases

import (
	"context"
	"log/slog"
	"sync/atomic"

	"gainboard/internal/domain/services"
	"gainboard/internal/market"
)

// LoadSnapshotUseCase fetches the full instrument snapshot and applies it to
// the store. Each request gets a monotonic sequence number; a completion is
// applied only when it still matches the latest issued number, so a manual
// refresh racing an in-flight load can never regress the store to stale
// data.
type LoadSnapshotUseCase struct {
	loader services.SnapshotLoader
	store  *market.Store
	logger *slog.Logger

	seq atomic.Uint64
}

func NewLoadSnapshotUseCase(
	loader services.SnapshotLoader,
	store *market.Store,
	logger *slog.Logger,
) *LoadSnapshotUseCase {
	return &LoadSnapshotUseCase{
		loader: loader,
		store:  store,
		logger: logger,
	}
}

// Execute runs one load. On failure the store keeps its prior contents and
// carries a user-visible error message; on success the snapshot replaces
// the store wholesale. Safe to call concurrently.
func (uc *LoadSnapshotUseCase) Execute(ctx context.Context) error {
	seq := uc.seq.Add(1)
	uc.store.SetLoading(true)

	instruments, err := uc.loader.LoadSnapshot(ctx)

	if uc.seq.Load() != seq {
		uc.logger.Debug("Discarding stale snapshot completion", "seq", seq)
		return nil
	}

	if err != nil {
		uc.logger.Error("Snapshot load failed", "error", err)
		uc.store.SetError(err.Error())
		uc.store.SetLoading(false)
		return err
	}

	uc.store.ReplaceAll(instruments)
	uc.logger.Info("Snapshot loaded", "instruments", len(instruments))
	return nil
}
