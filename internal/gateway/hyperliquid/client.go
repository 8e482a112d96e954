package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/config"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/exchange"
)

// Client talks to the venue's REST API: unauthenticated /info reads and
// signed /exchange writes. One Client is constructed at startup and shared
// for the life of the process; it is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	signer     *Signer
	wallet     string // account queried for state, not necessarily the signing wallet
	suffix     string // instrument suffix appended when mapping venue coins back out

	assetMu  sync.RWMutex
	assetIdx map[string]int // coin -> asset index from /info meta

	nonceMu   sync.Mutex
	lastNonce uint64
}

// NewClient builds the venue client from configuration. The signer is
// constructed eagerly so a bad private key fails at startup, not on the
// first order.
// instrumentSuffix keeps the positions it reports in the same naming the
// rest of the service uses ("BTC" on the wire, "BTCUSD-PERP" everywhere
// else).
func NewClient(cfg config.HyperliquidConfig, instrumentSuffix string) (*Client, error) {
	raw := strings.TrimSpace(cfg.APIURL)
	if raw == "" {
		return nil, fmt.Errorf("hyperliquid.api_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing hyperliquid.api_url failed: %w", err)
	}
	testnet := strings.Contains(parsed.Host, "testnet")
	signer, err := NewSigner(cfg.PrivateKey, testnet)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		signer:     signer,
		wallet:     strings.ToLower(strings.TrimSpace(cfg.WalletAddress)),
		suffix:     instrumentSuffix,
		assetIdx:   make(map[string]int),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) Name() string { return "hyperliquid" }

// Warmup loads the asset-index table so the first order does not pay the
// extra round trip. Called once during startup.
func (c *Client) Warmup(ctx context.Context) error {
	return c.refreshMeta(ctx)
}

// AccountState fetches the clearinghouse state for the configured wallet.
func (c *Client) AccountState(ctx context.Context) (exchange.AccountState, error) {
	var raw clearinghouseState
	if err := c.postInfo(ctx, infoRequest{Type: "clearinghouseState", User: c.wallet}, &raw); err != nil {
		return exchange.AccountState{}, err
	}
	state := exchange.AccountState{
		AccountValue: parseFloat(raw.MarginSummary.AccountValue),
		MarginUsed:   parseFloat(raw.MarginSummary.TotalMarginUsed),
		UpdatedAt:    time.Now(),
	}
	for _, ap := range raw.AssetPositions {
		szi := parseFloat(ap.Position.Szi)
		if szi == 0 {
			continue
		}
		side := exchange.SideLong
		if szi < 0 {
			side = exchange.SideShort
		}
		state.Positions = append(state.Positions, exchange.Position{
			Instrument:    instrumentFromCoin(ap.Position.Coin, c.suffix),
			Side:          side,
			Size:          math.Abs(szi),
			EntryPrice:    parseFloat(ap.Position.EntryPx),
			UnrealizedPnL: parseFloat(ap.Position.UnrealizedPnl),
			Leverage:      ap.Position.Leverage.Value,
			UpdatedAt:     state.UpdatedAt,
		})
	}
	return state, nil
}

// MidPrice returns the current mid for one instrument via allMids.
func (c *Client) MidPrice(ctx context.Context, instrument string) (float64, error) {
	var mids map[string]string
	if err := c.postInfo(ctx, infoRequest{Type: "allMids"}, &mids); err != nil {
		return 0, err
	}
	coin := coinFromInstrument(instrument)
	raw, ok := mids[coin]
	if !ok {
		return 0, fmt.Errorf("no mid price for %s (coin %s)", instrument, coin)
	}
	price := parseFloat(raw)
	if price <= 0 {
		return 0, fmt.Errorf("venue returned non-positive mid %q for %s", raw, coin)
	}
	return price, nil
}

// SetLeverage updates leverage and margin mode for one instrument. The
// venue wants whole-number leverage; fractional requests round to nearest.
func (c *Client) SetLeverage(ctx context.Context, instrument string, leverage float64, cross bool) error {
	asset, err := c.assetIndex(ctx, coinFromInstrument(instrument))
	if err != nil {
		return err
	}
	lev := int(math.Round(leverage))
	if lev < 1 {
		lev = 1
	}
	action := updateLeverageAction{
		Type:     "updateLeverage",
		Asset:    asset,
		IsCross:  cross,
		Leverage: lev,
	}
	body, err := c.postExchange(ctx, action)
	if err != nil {
		return err
	}
	if status := gjson.GetBytes(body, "status").String(); status != "ok" {
		return fmt.Errorf("updateLeverage rejected: %s", summarizeError(body))
	}
	return nil
}

// PlaceOrder submits a single order and extracts per-leg fill statuses. A
// transport or venue-level rejection surfaces as error; an acknowledged
// submission with unreadable statuses comes back as an outcome with no
// legs, which callers treat as unfilled.
func (c *Client) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (exchange.OrderOutcome, error) {
	asset, err := c.assetIndex(ctx, coinFromInstrument(req.Instrument))
	if err != nil {
		return exchange.OrderOutcome{}, err
	}
	tif := string(req.TimeInForce)
	if tif == "" {
		tif = string(exchange.TifIoc)
	}
	action := orderAction{
		Type: "order",
		Orders: []orderWire{{
			Asset:      asset,
			IsBuy:      req.IsBuy,
			Price:      formatFloat(req.LimitPrice),
			Size:       formatFloat(req.Size),
			ReduceOnly: req.ReduceOnly,
			Type:       orderTypeWire{Limit: &limitTif{Tif: tif}},
		}},
		Grouping: "na",
	}
	body, err := c.postExchange(ctx, action)
	if err != nil {
		return exchange.OrderOutcome{}, err
	}
	if status := gjson.GetBytes(body, "status").String(); status != "ok" {
		return exchange.OrderOutcome{}, fmt.Errorf("order rejected: %s", summarizeError(body))
	}
	return parseOrderOutcome(body), nil
}

// parseOrderOutcome walks response.data.statuses. Each entry is one leg:
// {"filled": {...}} | {"resting": {...}} | {"error": "..."}.
func parseOrderOutcome(body []byte) exchange.OrderOutcome {
	outcome := exchange.OrderOutcome{Raw: string(body)}
	statuses := gjson.GetBytes(body, "response.data.statuses")
	if !statuses.Exists() || !statuses.IsArray() {
		return outcome
	}
	statuses.ForEach(func(_, leg gjson.Result) bool {
		switch {
		case leg.Get("filled").Exists():
			filled := leg.Get("filled")
			outcome.Legs = append(outcome.Legs, exchange.LegStatus{
				Filled:   true,
				Status:   "filled",
				AvgPrice: parseFloat(filled.Get("avgPx").String()),
				FillSize: parseFloat(filled.Get("totalSz").String()),
			})
		case leg.Get("resting").Exists():
			outcome.Legs = append(outcome.Legs, exchange.LegStatus{Status: "resting"})
		case leg.Get("error").Exists():
			outcome.Legs = append(outcome.Legs, exchange.LegStatus{
				Status: "error",
				Error:  leg.Get("error").String(),
			})
		default:
			outcome.Legs = append(outcome.Legs, exchange.LegStatus{Status: "unknown"})
		}
		return true
	})
	return outcome
}

func summarizeError(body []byte) string {
	if msg := gjson.GetBytes(body, "response").String(); msg != "" {
		return msg
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 256 {
		text = text[:256]
	}
	return text
}

func (c *Client) assetIndex(ctx context.Context, coin string) (int, error) {
	c.assetMu.RLock()
	idx, ok := c.assetIdx[coin]
	c.assetMu.RUnlock()
	if ok {
		return idx, nil
	}
	if err := c.refreshMeta(ctx); err != nil {
		return 0, err
	}
	c.assetMu.RLock()
	defer c.assetMu.RUnlock()
	idx, ok = c.assetIdx[coin]
	if !ok {
		return 0, fmt.Errorf("unknown instrument coin %q", coin)
	}
	return idx, nil
}

func (c *Client) refreshMeta(ctx context.Context) error {
	var meta metaResponse
	if err := c.postInfo(ctx, infoRequest{Type: "meta"}, &meta); err != nil {
		return err
	}
	c.assetMu.Lock()
	defer c.assetMu.Unlock()
	for i, entry := range meta.Universe {
		name := strings.ToUpper(strings.TrimSpace(entry.Name))
		if name != "" {
			c.assetIdx[name] = i
		}
	}
	return nil
}

// nextNonce returns a strictly increasing millisecond nonce; the venue
// rejects reused or rewound nonces.
func (c *Client) nextNonce() uint64 {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()
	nonce := uint64(time.Now().UnixMilli())
	if nonce <= c.lastNonce {
		nonce = c.lastNonce + 1
	}
	c.lastNonce = nonce
	return nonce
}

func (c *Client) postInfo(ctx context.Context, payload infoRequest, out any) error {
	return c.post(ctx, "/info", payload, out)
}

// postExchange signs the action and posts it, returning the raw response
// body for status inspection.
func (c *Client) postExchange(ctx context.Context, action any) ([]byte, error) {
	nonce := c.nextNonce()
	sig, err := c.signer.SignL1Action(action, nonce)
	if err != nil {
		return nil, err
	}
	req := exchangeRequest{
		Action:    action,
		Nonce:     nonce,
		Signature: sig,
	}
	var body json.RawMessage
	if err := c.post(ctx, "/exchange", req, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	if c == nil || c.baseURL == nil {
		return fmt.Errorf("hyperliquid client not initialized")
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request failed: %w", err)
	}
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("building request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling hyperliquid failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(data) == 0 {
			return fmt.Errorf("hyperliquid returned %s", resp.Status)
		}
		return fmt.Errorf("hyperliquid returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding hyperliquid response failed: %w", err)
	}
	return nil
}
