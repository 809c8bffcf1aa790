package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gainboard/internal/domain/entities"
	"gainboard/internal/infrastructure/binance"
	"gainboard/internal/market"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})

	quote := flag.String("quote", "USDT", "quote asset to rank against")
	limit := flag.Int("limit", 20, "number of top gainers to print")
	skipInfo := flag.Bool("skip-exchange-info", false, "filter by symbol suffix only")
	flag.Parse()

	log.Info().Msgf("fetching %s snapshot", *quote)

	fetcher := binance.NewSnapshotFetcher(*quote, time.Hour, *skipInfo, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	instruments, err := fetcher.LoadSnapshot(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("snapshot fetch failed")
	}

	log.Info().Msgf("fetched %d instruments", len(instruments))

	view := market.Paginate(instruments, 1, *limit)
	for i, inst := range view {
		fmt.Printf("%3d  %-12s %12s %10s %14s\n",
			i+1,
			inst.Symbol,
			entities.FormatPrice(inst.LastPrice),
			entities.FormatPercent(inst.PriceChangePercent),
			entities.FormatVolume(inst.Volume),
		)
	}
}
