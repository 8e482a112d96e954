// Package app wires configuration, the venue client, the trader and the
// HTTP ingress into one runnable unit.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/config"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/hyperliquid"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/notifier"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/logger"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/trader"
	livehttp "github.com/hotardaw/hyperliquid-perps-automation/internal/transport/http/live"
)

// App owns application-level orchestration: build dependencies once, then
// serve until the context is cancelled.
type App struct {
	cfg      *config.Config
	trader   *trader.Trader
	venue    *hyperliquid.Client
	events   *notifier.Dispatcher
	liveHTTP *livehttp.Server
	Summary  *StartupSummary

	configPath string // non-empty enables the log-level watch
}

// NewApp builds the application object from configuration (without starting).
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// WatchConfig enables live log-level reloads from the given config file.
func (a *App) WatchConfig(path string) {
	a.configPath = path
}

// Run serves HTTP and the config watch until ctx is cancelled or a
// component fails. Queued notifications are drained on the way out.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.liveHTTP.Start(ctx); err != nil {
			return fmt.Errorf("live http server error: %w", err)
		}
		return nil
	})
	if a.configPath != "" {
		group.Go(func() error {
			watchLogLevel(ctx, a.configPath)
			return nil
		})
	}

	err := group.Wait()
	a.events.Close()
	return err
}

// Trader exposes the reconciliation core for replay harnesses and tests.
func (a *App) Trader() *trader.Trader {
	if a == nil {
		return nil
	}
	return a.trader
}
