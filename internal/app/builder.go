package app

import (
	"context"
	"fmt"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/config"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/hyperliquid"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/notifier"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/logger"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/trader"
	livehttp "github.com/hotardaw/hyperliquid-perps-automation/internal/transport/http/live"
)

// AppBuilder assembles the application dependency graph step by step so each
// stage can fail with a precise error.
type AppBuilder struct {
	cfg *config.Config
}

func NewAppBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// Build constructs every component without starting anything.
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b == nil || b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	venue, err := hyperliquid.NewClient(cfg.Hyperliquid, cfg.Trading.InstrumentSuffix)
	if err != nil {
		return nil, fmt.Errorf("building hyperliquid client: %w", err)
	}
	// best effort: the asset table is fetched lazily on first use anyway
	if err := venue.Warmup(ctx); err != nil {
		logger.Warnf("asset metadata warmup failed, will retry on first order: %v", err)
	}

	events := notifier.NewDispatcher(b.buildSink())
	core := trader.New(venue, events, cfg.Trading)

	server, err := livehttp.NewServer(livehttp.ServerConfig{
		Addr:          cfg.App.HTTPAddr,
		Signals:       core,
		Positions:     venue,
		ExpectedVenue: cfg.Trading.VenueName(),
	})
	if err != nil {
		return nil, fmt.Errorf("building live http server: %w", err)
	}

	return &App{
		cfg:      cfg,
		trader:   core,
		venue:    venue,
		events:   events,
		liveHTTP: server,
		Summary:  buildSummary(cfg, server.Addr()),
	}, nil
}

func (b *AppBuilder) buildSink() notifier.TextNotifier {
	tg := b.cfg.Notify.Telegram
	if !tg.Enabled {
		logger.Infof("telegram notifications disabled")
		return notifier.Noop{}
	}
	return notifier.NewTelegram(tg.BotToken, tg.ChatID)
}
