package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gainboard/internal/domain/entities"
	"gainboard/internal/market"
)

func seedStore(t *testing.T) *market.Store {
	t.Helper()
	store := market.NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		entities.NewInstrument("BTCUSDT", "USDT", 67000, 5, 1_000_000, 68000, 64000),
		entities.NewInstrument("ETHUSDT", "USDT", 3500, 10, 900_000, 3600, 3400),
		entities.NewInstrument("SOLUSDT", "USDT", 150, 2, 500_000, 160, 140),
	})
	return store
}

func TestEventHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("applies tracked ticker updates and re-ranks", func(t *testing.T) {
		store := seedStore(t)
		handler := NewEventHandler(store, "USDT", logger)

		msg := []byte(`[{"e":"24hrTicker","E":1700000000000,"s":"BTCUSDT","c":"68500.10","P":"12.4","h":"69000","l":"64000","q":"1200000"}]`)
		err := handler.HandleMessage(ctx, msg)
		require.NoError(t, err)

		view := store.Instruments()
		assert.Equal(t, "BTCUSDT", view[0].Symbol)
		assert.Equal(t, 68500.10, view[0].LastPrice)
		assert.Equal(t, 12.4, view[0].PriceChangePercent)
	})

	t.Run("ignores untracked symbols without inserting", func(t *testing.T) {
		store := seedStore(t)
		handler := NewEventHandler(store, "USDT", logger)

		msg := []byte(`[{"s":"DOGEUSDT","c":"0.1","P":"50"}]`)
		err := handler.HandleMessage(ctx, msg)
		require.NoError(t, err)

		assert.Equal(t, 3, store.Len())
		assert.False(t, store.Tracks("DOGEUSDT"))
	})

	t.Run("ignores non-matching quote asset", func(t *testing.T) {
		store := seedStore(t)
		handler := NewEventHandler(store, "USDT", logger)

		msg := []byte(`[{"s":"BTCEUR","c":"60000","P":"50"}]`)
		err := handler.HandleMessage(ctx, msg)
		require.NoError(t, err)

		assert.Equal(t, 5.0, store.Instruments()[1].PriceChangePercent)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("skips malformed records but applies valid ones", func(t *testing.T) {
		store := seedStore(t)
		handler := NewEventHandler(store, "USDT", logger)

		msg := []byte(`[
			{"s":"BTCUSDT","c":"not-a-number","P":"12.4"},
			{"s":"ETHUSDT","c":"3600.5","P":"11.0"}
		]`)
		err := handler.HandleMessage(ctx, msg)
		require.NoError(t, err)

		view := store.Instruments()
		// BTC record skipped, ETH applied
		assert.Equal(t, "ETHUSDT", view[0].Symbol)
		assert.Equal(t, 3600.5, view[0].LastPrice)
		for _, v := range view {
			if v.Symbol == "BTCUSDT" {
				assert.Equal(t, 67000.0, v.LastPrice)
			}
		}
	})

	t.Run("malformed whole message is dropped without touching state", func(t *testing.T) {
		store := seedStore(t)
		handler := NewEventHandler(store, "USDT", logger)
		before := store.Instruments()

		err := handler.HandleMessage(ctx, []byte(`{not json`))
		assert.Error(t, err)
		assert.Equal(t, before, store.Instruments())
	})

	t.Run("non-array control message is dropped", func(t *testing.T) {
		store := seedStore(t)
		handler := NewEventHandler(store, "USDT", logger)

		err := handler.HandleMessage(ctx, []byte(`{"result":null,"id":1}`))
		assert.Error(t, err)
		assert.Equal(t, 3, store.Len())
	})

	t.Run("last delivered update wins per symbol", func(t *testing.T) {
		store := seedStore(t)
		handler := NewEventHandler(store, "USDT", logger)

		first := []byte(`[{"s":"SOLUSDT","c":"155","P":"3.0"}]`)
		second := []byte(`[{"s":"SOLUSDT","c":"149","P":"1.5"}]`)
		require.NoError(t, handler.HandleMessage(ctx, first))
		require.NoError(t, handler.HandleMessage(ctx, second))

		for _, v := range store.Instruments() {
			if v.Symbol == "SOLUSDT" {
				assert.Equal(t, 149.0, v.LastPrice)
				assert.Equal(t, 1.5, v.PriceChangePercent)
			}
		}
	})
}
