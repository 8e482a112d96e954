package livehttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/decision"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/exchange"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/trader"
)

type stubHandler struct {
	got []decision.Signal
	out trader.Outcome
	err error
}

func (s *stubHandler) Handle(_ context.Context, sig decision.Signal) (trader.Outcome, error) {
	s.got = append(s.got, sig)
	if s.err != nil {
		return trader.Outcome{}, s.err
	}
	out := s.out
	out.TraceID = sig.TraceID
	return out, nil
}

type stubPositions struct {
	state exchange.AccountState
	err   error
}

func (s *stubPositions) AccountState(context.Context) (exchange.AccountState, error) {
	return s.state, s.err
}

func newTestServer(t *testing.T, handler *stubHandler, positions PositionReader) *Server {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Addr:          ":0",
		Signals:       handler,
		Positions:     positions,
		ExpectedVenue: "hyperliquid",
	})
	require.NoError(t, err)
	return srv
}

func postSignal(srv *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/live/signal", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubHandler{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignalAccepted(t *testing.T) {
	handler := &stubHandler{out: trader.Outcome{
		Instrument: "BTCUSD-PERP",
		Action:     decision.ActionOpenShort,
		FilledSize: 0.5,
		FillPrice:  50000,
	}}
	srv := newTestServer(t, handler, nil)

	rec := postSignal(srv, `{
		"exchange": "Hyperliquid",
		"market": "BTC_USD",
		"position": "short",
		"sizeByLeverage": 2.5,
		"price": 50123.4,
		"strategy": "breakout-v2",
		"order": "sell"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, handler.got, 1)
	sig := handler.got[0]
	assert.Equal(t, "hyperliquid", sig.Exchange)
	assert.Equal(t, "BTC_USD", sig.Market)
	assert.Equal(t, decision.DesiredShort, sig.Desired)
	assert.Equal(t, 2.5, sig.Leverage)
	assert.Equal(t, "breakout-v2", sig.Strategy)
	assert.NotEmpty(t, sig.TraceID)

	body := rec.Body.String()
	assert.Equal(t, "open_short", gjson.Get(body, "action").String())
	assert.Equal(t, sig.TraceID, gjson.Get(body, "trace_id").String())
	assert.Equal(t, 0.5, gjson.Get(body, "filled_size").Float())
}

func TestSignalSchemaRejections(t *testing.T) {
	handler := &stubHandler{}
	srv := newTestServer(t, handler, nil)

	for name, body := range map[string]string{
		"missing market":    `{"exchange":"hyperliquid","position":"long"}`,
		"empty position":    `{"exchange":"hyperliquid","market":"BTC_USD","position":""}`,
		"zero leverage":     `{"exchange":"hyperliquid","market":"BTC_USD","position":"long","sizeByLeverage":0}`,
		"malformed json":    `{"exchange":`,
		"non-object":        `42`,
	} {
		rec := postSignal(srv, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.Empty(t, handler.got, "rejected signals never reach the trader")
}

func TestSignalWrongVenue(t *testing.T) {
	handler := &stubHandler{}
	srv := newTestServer(t, handler, nil)

	rec := postSignal(srv, `{"exchange":"binance","market":"BTC_USD","position":"long"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exchange")
	assert.Empty(t, handler.got)
}

func TestSignalUnknownPosition(t *testing.T) {
	srv := newTestServer(t, &stubHandler{}, nil)
	rec := postSignal(srv, `{"exchange":"hyperliquid","market":"BTC_USD","position":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignalHandlerFailure(t *testing.T) {
	handler := &stubHandler{err: &trader.TransportError{Op: "order submit", Err: errors.New("boom")}}
	srv := newTestServer(t, handler, nil)

	rec := postSignal(srv, `{"exchange":"hyperliquid","market":"BTC_USD","position":"long"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "trace_id").String())
}

func TestPositionsView(t *testing.T) {
	positions := &stubPositions{state: exchange.AccountState{
		AccountValue: 12500.5,
		MarginUsed:   2500.5,
		Positions: []exchange.Position{{
			Instrument: "BTCUSD-PERP",
			Side:       exchange.SideShort,
			Size:       1.2,
		}},
	}}
	srv := newTestServer(t, &stubHandler{}, positions)

	req := httptest.NewRequest(http.MethodGet, "/api/live/positions", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Equal(t, 10000.0, gjson.Get(body, "withdrawable").Float())
	assert.Equal(t, "BTCUSD-PERP", gjson.Get(body, "positions.0.Instrument").String())
}

func TestPositionsRouteAbsentWithoutReader(t *testing.T) {
	srv := newTestServer(t, &stubHandler{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/live/positions", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
