package binance

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"

	"gainboard/internal/domain/entities"
)

const DefaultExchangeInfoTTL = time.Hour

// SnapshotFetcher loads the full set of actively tradeable instruments with
// their 24h statistics, ranked descending by price change percent.
//
// Exchange metadata changes rarely, so it is cached with a TTL; when a
// refresh fails the last good value is served instead, unless no cache
// exists yet.
type SnapshotFetcher struct {
	client           *binance.Client
	quoteAsset       string
	skipExchangeInfo bool
	cacheTTL         time.Duration
	logger           *slog.Logger

	mu           sync.Mutex
	activeCache  map[string]struct{}
	activeCached time.Time
}

func NewSnapshotFetcher(quoteAsset string, cacheTTL time.Duration, skipExchangeInfo bool, logger *slog.Logger) *SnapshotFetcher {
	if cacheTTL <= 0 {
		cacheTTL = DefaultExchangeInfoTTL
	}
	return &SnapshotFetcher{
		client:           binance.NewClient("", ""),
		quoteAsset:       quoteAsset,
		skipExchangeInfo: skipExchangeInfo,
		cacheTTL:         cacheTTL,
		logger:           logger,
	}
}

// SetBaseURL points the fetcher at a different REST endpoint. Used by tests.
func (f *SnapshotFetcher) SetBaseURL(url string) {
	f.client.BaseURL = url
}

// LoadSnapshot fetches the 24h statistics for all pairs, keeps those whose
// symbol carries the quote-asset suffix and which are actively tradeable,
// and returns them sorted descending by price change percent. It never
// returns a partial result.
func (f *SnapshotFetcher) LoadSnapshot(ctx context.Context) ([]*entities.Instrument, error) {
	var active map[string]struct{}
	if !f.skipExchangeInfo {
		var err error
		active, err = f.activeSymbols(ctx)
		if err != nil {
			return nil, &entities.LoadError{Op: "fetch exchange info", Err: err}
		}
	}

	stats, err := f.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, &entities.LoadError{Op: "fetch 24h statistics", Err: err}
	}

	instruments := make([]*entities.Instrument, 0, len(stats))
	for _, s := range stats {
		if !strings.HasSuffix(s.Symbol, f.quoteAsset) {
			continue
		}
		if active != nil {
			if _, ok := active[s.Symbol]; !ok {
				continue
			}
		}

		inst, err := f.toInstrument(s)
		if err != nil {
			f.logger.Debug("Skipping ticker with malformed numeric field", "symbol", s.Symbol, "error", err)
			continue
		}
		instruments = append(instruments, inst)
	}

	sort.SliceStable(instruments, func(i, j int) bool {
		return instruments[i].PriceChangePercent > instruments[j].PriceChangePercent
	})

	f.logger.Info("Fetched instrument snapshot", "count", len(instruments), "quote", f.quoteAsset)
	return instruments, nil
}

// activeSymbols returns the set of symbols with TRADING status against the
// quote asset, served from cache within the TTL. A refresh failure falls
// back to the last good cache when one exists.
func (f *SnapshotFetcher) activeSymbols(ctx context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.activeCache != nil && time.Since(f.activeCached) < f.cacheTTL {
		return f.activeCache, nil
	}

	info, err := f.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		if f.activeCache != nil {
			f.logger.Warn("Exchange info refresh failed, serving cached metadata", "error", err)
			return f.activeCache, nil
		}
		return nil, err
	}

	active := make(map[string]struct{}, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status == "TRADING" && s.QuoteAsset == f.quoteAsset {
			active[s.Symbol] = struct{}{}
		}
	}

	f.activeCache = active
	f.activeCached = time.Now()
	f.logger.Debug("Refreshed exchange metadata", "active", len(active))
	return active, nil
}

func (f *SnapshotFetcher) toInstrument(s *binance.PriceChangeStats) (*entities.Instrument, error) {
	lastPrice, err := strconv.ParseFloat(s.LastPrice, 64)
	if err != nil {
		return nil, err
	}
	changePercent, err := strconv.ParseFloat(s.PriceChangePercent, 64)
	if err != nil {
		return nil, err
	}
	quoteVolume, err := strconv.ParseFloat(s.QuoteVolume, 64)
	if err != nil {
		return nil, err
	}
	highPrice, err := strconv.ParseFloat(s.HighPrice, 64)
	if err != nil {
		return nil, err
	}
	lowPrice, err := strconv.ParseFloat(s.LowPrice, 64)
	if err != nil {
		return nil, err
	}

	return entities.NewInstrument(s.Symbol, f.quoteAsset, lastPrice, changePercent, quoteVolume, highPrice, lowPrice), nil
}
