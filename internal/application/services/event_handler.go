package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gainboard/internal/application/dto"
	"gainboard/internal/domain/entities"
	"gainboard/internal/market"
)

// EventHandler normalizes raw streaming messages into partial instrument
// updates and merges them into the store. A malformed message is logged and
// dropped; it never halts the stream or touches store state.
type EventHandler struct {
	store      *market.Store
	quoteAsset string
	logger     *slog.Logger
}

func NewEventHandler(store *market.Store, quoteAsset string, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		store:      store,
		quoteAsset: quoteAsset,
		logger:     logger,
	}
}

// HandleMessage processes one batch of ticker records. Records for symbols
// that do not match the quote asset or are not currently tracked are
// ignored; individual malformed records are skipped. The returned error
// reports a whole-message decode failure and is informational only.
func (h *EventHandler) HandleMessage(ctx context.Context, message []byte) error {
	var events []dto.TickerEventDTO
	if err := json.Unmarshal(message, &events); err != nil {
		h.logger.Error("Failed to parse ticker batch", "error", err)
		return fmt.Errorf("parse ticker batch: %w", err)
	}

	applied := 0
	for _, event := range events {
		if !strings.HasSuffix(event.Symbol, h.quoteAsset) {
			continue
		}
		// membership test against the full instrument set, not the
		// filtered view; unknown symbols are never inserted
		if !h.store.Tracks(event.Symbol) {
			continue
		}

		update, err := h.normalize(event)
		if err != nil {
			h.logger.Debug("Skipping malformed ticker record", "symbol", event.Symbol, "error", err)
			continue
		}

		h.store.Merge(event.Symbol, update)
		applied++
	}

	if applied > 0 {
		h.logger.Debug("Applied ticker batch", "records", len(events), "applied", applied)
	}
	return nil
}

func (h *EventHandler) normalize(event dto.TickerEventDTO) (entities.InstrumentUpdate, error) {
	lastPrice, err := strconv.ParseFloat(event.LastPrice, 64)
	if err != nil {
		return entities.InstrumentUpdate{}, fmt.Errorf("invalid last price: %w", err)
	}

	changePercent, err := strconv.ParseFloat(event.PriceChangePercent, 64)
	if err != nil {
		return entities.InstrumentUpdate{}, fmt.Errorf("invalid price change percent: %w", err)
	}

	return entities.InstrumentUpdate{
		LastPrice:          &lastPrice,
		PriceChangePercent: &changePercent,
	}, nil
}
