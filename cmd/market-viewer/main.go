package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gainboard/internal/domain/entities"
	"gainboard/internal/infrastructure/container"
	"gainboard/internal/market"
)

var (
	search       string
	page         int
	dumpInterval int
)

var rootCmd = &cobra.Command{
	Use:   "market-viewer",
	Short: "Live ranked view of top-gaining trading pairs",
	Long: `market-viewer loads a snapshot of all actively traded pairs, ranks them
by 24h price change, then keeps the ranking live from the streaming ticker
feed. The current page of the (optionally filtered) view is logged
periodically.`,
	RunE: runViewer,
}

func init() {
	rootCmd.Flags().StringVarP(&search, "search", "s", "", "Initial search query (symbol or base asset substring)")
	rootCmd.Flags().IntVarP(&page, "page", "p", 1, "Initial page")
	rootCmd.Flags().IntVarP(&dumpInterval, "interval", "i", 10, "Seconds between page dumps")
}

func runViewer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	c, err := container.New(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	logger := c.Logger
	logger.Info("Starting market viewer", "quote", c.Config.Market.QuoteAsset)

	if err := c.LoadSnapshot.Execute(ctx); err != nil {
		logger.Error("Initial snapshot load failed", "error", err)
		return err
	}

	if search != "" {
		c.Store.SetSearchQuery(strings.ToLower(search))
	}
	if page > 1 {
		c.Store.SetPage(page)
	}

	go func() {
		if err := c.Supervisor.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Stream supervisor stopped", "error", err)
		}
	}()

	if refresh := c.Config.App.RefreshInterval; refresh > 0 {
		go func() {
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := c.LoadSnapshot.Execute(ctx); err != nil {
						logger.Warn("Periodic snapshot refresh failed", "error", err)
					}
				}
			}
		}()
	}

	dump := time.NewTicker(time.Duration(dumpInterval) * time.Second)
	defer dump.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down")
			return nil
		case <-dump.C:
			dumpPage(c)
		}
	}
}

func dumpPage(c *container.Container) {
	start, end := market.PageRange(c.Store.CurrentPage(), c.Store.PageSize(), c.Store.FilteredLen())

	c.Logger.Info("Market view",
		"connected", c.Store.IsConnected(),
		"page", c.Store.CurrentPage(),
		"totalPages", c.Store.TotalPages(),
		"showing", fmt.Sprintf("%d-%d of %d", start, end, c.Store.FilteredLen()),
		"error", c.Store.ErrorMessage(),
	)

	for _, inst := range c.Store.FilteredPage() {
		c.Logger.Info("Instrument",
			"symbol", inst.Symbol,
			"price", entities.FormatPrice(inst.LastPrice),
			"change", entities.FormatPercent(inst.PriceChangePercent),
			"volume", entities.FormatVolume(inst.Volume),
		)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
