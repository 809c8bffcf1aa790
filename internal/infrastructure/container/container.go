package container

import (
	"context"
	"fmt"
	"log/slog"

	appservices "gainboard/internal/application/services"
	"gainboard/internal/application/usecases"
	"gainboard/internal/infrastructure/binance"
	"gainboard/internal/infrastructure/config"
	"gainboard/internal/infrastructure/logging"
	"gainboard/internal/infrastructure/websocket"
	"gainboard/internal/market"
)

// Container wires the engine together: config, logger, store, snapshot
// loading, update normalization, and the stream supervisor.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Store     *market.Store
	Navigator *market.Navigator

	SnapshotFetcher *binance.SnapshotFetcher
	LoadSnapshot    *usecases.LoadSnapshotUseCase
	EventHandler    *appservices.EventHandler
	Supervisor      *websocket.Supervisor
}

func New(ctx context.Context) (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	c.Logger = logging.New(cfg.App.LogLevel, cfg.App.LogFile)

	c.Store = market.NewStore(cfg.Market.PageSize, c.Logger)
	c.Navigator = market.NewNavigator(c.Store)

	c.SnapshotFetcher = binance.NewSnapshotFetcher(
		cfg.Market.QuoteAsset,
		cfg.Market.ExchangeInfoTTL,
		cfg.Market.SkipExchangeInfo,
		c.Logger,
	)

	c.LoadSnapshot = usecases.NewLoadSnapshotUseCase(c.SnapshotFetcher, c.Store, c.Logger)

	c.EventHandler = appservices.NewEventHandler(c.Store, cfg.Market.QuoteAsset, c.Logger)

	c.Supervisor = websocket.NewSupervisor(
		cfg.Stream.URL,
		cfg.Stream.ReconnectAttempts,
		cfg.Stream.ReconnectDelay,
		websocket.Callbacks{
			OnConnected: func() {
				c.Store.SetConnected(true)
			},
			OnDisconnected: func() {
				c.Store.SetConnected(false)
			},
			OnMessage: func(message []byte) error {
				return c.EventHandler.HandleMessage(context.Background(), message)
			},
		},
		c.Logger,
	)

	return c, nil
}

func (c *Container) Close() error {
	if c.Supervisor != nil {
		if err := c.Supervisor.Close(); err != nil {
			c.Logger.Error("Failed to close stream supervisor", "error", err)
			return err
		}
	}
	return nil
}
