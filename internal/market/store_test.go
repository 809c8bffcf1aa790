package market

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gainboard/internal/domain/entities"
)

func inst(symbol string, changePercent float64) *entities.Instrument {
	return entities.NewInstrument(symbol, "USDT", 100, changePercent, 1000, 110, 90)
}

func symbols(view []entities.Instrument) []string {
	out := make([]string, len(view))
	for i, v := range view {
		out[i] = v.Symbol
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func TestStore_ReplaceAll(t *testing.T) {
	store := NewStore(10, nil)
	require.True(t, store.IsLoading())

	store.SetError("previous failure")
	store.ReplaceAll([]*entities.Instrument{
		inst("AUSDT", 5),
		inst("BUSDT", 10),
		inst("CUSDT", 2),
	})

	assert.Equal(t, []string{"BUSDT", "AUSDT", "CUSDT"}, symbols(store.Instruments()))
	assert.False(t, store.IsLoading())
	assert.Empty(t, store.ErrorMessage())
	assert.Equal(t, 3, store.Len())
}

func TestStore_ReplaceAll_RefiltersWithCurrentQuery(t *testing.T) {
	store := NewStore(10, nil)
	store.SetSearchQuery("btc")

	store.ReplaceAll([]*entities.Instrument{
		inst("BTCUSDT", 5),
		inst("ETHUSDT", 10),
		inst("BTCUPUSDT", 2),
	})

	assert.Equal(t, []string{"BTCUSDT", "BTCUPUSDT"}, symbols(store.Filtered()))
}

func TestStore_Merge_Reranks(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		inst("AUSDT", 5),
		inst("BUSDT", 10),
		inst("CUSDT", 2),
	})
	require.Equal(t, []string{"BUSDT", "AUSDT", "CUSDT"}, symbols(store.Instruments()))

	store.Merge("AUSDT", entities.InstrumentUpdate{
		LastPrice:          floatPtr(112),
		PriceChangePercent: floatPtr(12),
	})

	assert.Equal(t, []string{"AUSDT", "BUSDT", "CUSDT"}, symbols(store.Instruments()))

	view := store.Instruments()
	assert.Equal(t, 112.0, view[0].LastPrice)
	assert.Equal(t, 12.0, view[0].PriceChangePercent)
}

func TestStore_Merge_UnknownSymbolIsNoOp(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		inst("AUSDT", 5),
		inst("BUSDT", 10),
	})
	before := store.Instruments()

	store.Merge("ZZZUSDT", entities.InstrumentUpdate{PriceChangePercent: floatPtr(99)})

	assert.Equal(t, before, store.Instruments())
	assert.Equal(t, 2, store.Len())
}

func TestStore_Merge_PartialFieldsOnly(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{inst("AUSDT", 5)})

	store.Merge("AUSDT", entities.InstrumentUpdate{LastPrice: floatPtr(101)})

	got := store.Instruments()[0]
	assert.Equal(t, 101.0, got.LastPrice)
	assert.Equal(t, 5.0, got.PriceChangePercent)
	assert.Equal(t, 1000.0, got.Volume)
}

func TestStore_Merge_StableOnEqualChange(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		inst("AUSDT", 5),
		inst("BUSDT", 5),
		inst("CUSDT", 5),
	})

	// repeated merges that do not change ranking keep the original order
	for i := 0; i < 3; i++ {
		store.Merge("BUSDT", entities.InstrumentUpdate{LastPrice: floatPtr(100)})
	}

	assert.Equal(t, []string{"AUSDT", "BUSDT", "CUSDT"}, symbols(store.Instruments()))
}

func TestStore_Merge_AlwaysSortedUnderUpdateSequences(t *testing.T) {
	store := NewStore(10, nil)
	list := make([]*entities.Instrument, 0, 8)
	for i := 0; i < 8; i++ {
		list = append(list, inst(fmt.Sprintf("S%dUSDT", i), float64(i)))
	}
	store.ReplaceAll(list)

	updates := []struct {
		symbol string
		change float64
	}{
		{"S0USDT", 50}, {"S7USDT", -3}, {"S3USDT", 50}, {"S5USDT", 0.5},
		{"S0USDT", -1}, {"S2USDT", 50},
	}
	for _, u := range updates {
		store.Merge(u.symbol, entities.InstrumentUpdate{PriceChangePercent: floatPtr(u.change)})

		view := store.Instruments()
		for i := 1; i < len(view); i++ {
			assert.GreaterOrEqual(t, view[i-1].PriceChangePercent, view[i].PriceChangePercent)
		}
	}

	// S3 and S2 share 50 but S3 reached it first; stable sort keeps that order
	assert.Equal(t, []string{"S3USDT", "S2USDT"}, symbols(store.Instruments())[:2])
}

func TestStore_SearchFiltering(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		inst("BTCUSDT", 5),
		inst("ETHUSDT", 10),
		inst("BTCUPUSDT", 2),
	})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "matches symbol and base asset case-insensitively",
			query: "btc",
			want:  []string{"BTCUSDT", "BTCUPUSDT"},
		},
		{
			name:  "upper case query",
			query: "ETH",
			want:  []string{"ETHUSDT"},
		},
		{
			name:  "empty query keeps full view",
			query: "",
			want:  []string{"ETHUSDT", "BTCUSDT", "BTCUPUSDT"},
		},
		{
			name:  "whitespace-only query keeps full view",
			query: "   ",
			want:  []string{"ETHUSDT", "BTCUSDT", "BTCUPUSDT"},
		},
		{
			name:  "no match yields empty view",
			query: "doge",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.SetSearchQuery(tt.query)
			assert.Equal(t, tt.want, symbols(store.Filtered()))
		})
	}
}

func TestStore_FilteredIsOrderPreservingSubsequence(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		inst("BTCUSDT", 1),
		inst("ETHUSDT", 9),
		inst("BTCUPUSDT", 4),
		inst("BTCDOWNUSDT", 7),
	})
	store.SetSearchQuery("btc")

	assert.Equal(t, []string{"BTCDOWNUSDT", "BTCUPUSDT", "BTCUSDT"}, symbols(store.Filtered()))
}

func TestStore_SetSearchQueryResetsPage(t *testing.T) {
	store := NewStore(10, nil)
	store.SetPage(7)
	require.Equal(t, 7, store.CurrentPage())

	store.SetSearchQuery("btc")

	assert.Equal(t, 1, store.CurrentPage())
}

func TestStore_PageNavigation(t *testing.T) {
	store := NewStore(10, nil)
	list := make([]*entities.Instrument, 0, 25)
	for i := 0; i < 25; i++ {
		list = append(list, inst(fmt.Sprintf("S%02dUSDT", i), float64(25-i)))
	}
	store.ReplaceAll(list)
	require.Equal(t, 3, store.TotalPages())

	store.NextPage()
	assert.Equal(t, 2, store.CurrentPage())
	store.NextPage()
	assert.Equal(t, 3, store.CurrentPage())

	// clamped at the last page
	store.NextPage()
	assert.Equal(t, 3, store.CurrentPage())

	store.PrevPage()
	store.PrevPage()
	assert.Equal(t, 1, store.CurrentPage())

	// clamped at page 1
	store.PrevPage()
	assert.Equal(t, 1, store.CurrentPage())

	// SetPage is deliberately unclamped
	store.SetPage(42)
	assert.Equal(t, 42, store.CurrentPage())
	assert.Empty(t, store.FilteredPage())
}

func TestStore_FilteredPage(t *testing.T) {
	store := NewStore(10, nil)
	list := make([]*entities.Instrument, 0, 25)
	for i := 0; i < 25; i++ {
		list = append(list, inst(fmt.Sprintf("S%02dUSDT", i), float64(25-i)))
	}
	store.ReplaceAll(list)

	assert.Len(t, store.FilteredPage(), 10)

	store.SetPage(3)
	page := store.FilteredPage()
	assert.Len(t, page, 5)
	assert.Equal(t, "S20USDT", page[0].Symbol)
}

func TestStore_Tracks(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		inst("BTCUSDT", 5),
		inst("ETHUSDT", 10),
	})
	store.SetSearchQuery("eth")

	// membership is against the full set, not the filtered view
	assert.True(t, store.Tracks("BTCUSDT"))
	assert.True(t, store.Tracks("ETHUSDT"))
	assert.False(t, store.Tracks("DOGEUSDT"))
}

func TestStore_StatusFlags(t *testing.T) {
	store := NewStore(10, nil)

	store.SetLoading(false)
	assert.False(t, store.IsLoading())

	store.SetError("snapshot fetch failed")
	assert.Equal(t, "snapshot fetch failed", store.ErrorMessage())
	store.SetError("")
	assert.Empty(t, store.ErrorMessage())

	assert.False(t, store.IsConnected())
	store.SetConnected(true)
	assert.True(t, store.IsConnected())
}

func TestStore_CursorIsNotAutoRepaired(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{
		inst("BTCUSDT", 5),
		inst("ETHUSDT", 10),
	})
	store.SetHighlighted("BTCUSDT")

	// filtering BTC out leaves the cursor stale rather than clearing it
	store.SetSearchQuery("eth")

	sym, ok := store.Highlighted()
	assert.True(t, ok)
	assert.Equal(t, "BTCUSDT", sym)

	_, resolved := store.CursorInstrument()
	assert.False(t, resolved)
}

func TestStore_ViewsAreCopies(t *testing.T) {
	store := NewStore(10, nil)
	store.ReplaceAll([]*entities.Instrument{inst("BTCUSDT", 5)})

	view := store.Instruments()
	view[0].PriceChangePercent = -100

	assert.Equal(t, 5.0, store.Instruments()[0].PriceChangePercent)
}
