package livehttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hotardaw/hyperliquid-perps-automation/internal/decision"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/gateway/exchange"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/logger"
	"github.com/hotardaw/hyperliquid-perps-automation/internal/trader"
)

const maxSignalBody = 64 * 1024

// SignalHandler is implemented by the trader; the ingress never talks to the
// venue for writes directly.
type SignalHandler interface {
	Handle(ctx context.Context, sig decision.Signal) (trader.Outcome, error)
}

// PositionReader serves the read-only positions view.
type PositionReader interface {
	AccountState(ctx context.Context) (exchange.AccountState, error)
}

// Router mounts the /api/live endpoints.
type Router struct {
	signals       SignalHandler
	positions     PositionReader
	expectedVenue string
}

func NewRouter(signals SignalHandler, positions PositionReader, expectedVenue string) *Router {
	return &Router{
		signals:       signals,
		positions:     positions,
		expectedVenue: strings.ToLower(strings.TrimSpace(expectedVenue)),
	}
}

// Register mounts the live routes under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/signal", r.handleSignal)
	if r.positions != nil {
		group.GET("/positions", r.handlePositions)
	}
}

// signalPayload is the raw webhook body after schema validation.
type signalPayload struct {
	Exchange       string  `json:"exchange"`
	Market         string  `json:"market"`
	Position       string  `json:"position"`
	SizeByLeverage float64 `json:"sizeByLeverage"`
	Order          string  `json:"order"`
	Price          float64 `json:"price"`
	Strategy       string  `json:"strategy"`
}

func (r *Router) handleSignal(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSignalBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		logger.Warnf("[api] signal rejected ip=%s: malformed json: %v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed json: " + err.Error()})
		return
	}
	if err := signalSchema.Validate(raw); err != nil {
		logger.Warnf("[api] signal rejected ip=%s: schema: %v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signal: " + err.Error()})
		return
	}
	var payload signalPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sig, err := r.toSignal(payload)
	if err != nil {
		logger.Warnf("[api] signal rejected ip=%s: %v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Infof("[api] signal %s ip=%s market=%s position=%s leverage=%.2f",
		sig.TraceID, c.ClientIP(), sig.Market, sig.Desired, sig.Leverage)

	out, err := r.signals.Handle(c.Request.Context(), sig)
	if err != nil {
		var verr *decision.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "trace_id": sig.TraceID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "trace_id": sig.TraceID})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"trace_id":    out.TraceID,
		"action":      out.Action.String(),
		"instrument":  out.Instrument,
		"filled_size": out.FilledSize,
		"fill_price":  out.FillPrice,
	})
}

// toSignal validates venue and desired position and stamps a trace id.
func (r *Router) toSignal(p signalPayload) (decision.Signal, error) {
	if got := strings.ToLower(strings.TrimSpace(p.Exchange)); got != r.expectedVenue {
		return decision.Signal{}, &decision.ValidationError{
			Field:  "exchange",
			Reason: "got " + strconv.Quote(got) + ", want " + strconv.Quote(r.expectedVenue),
		}
	}
	desired, err := decision.ParseDesired(p.Position)
	if err != nil {
		return decision.Signal{}, err
	}
	return decision.Signal{
		TraceID:  uuid.NewString(),
		Exchange: r.expectedVenue,
		Market:   p.Market,
		Desired:  desired,
		Leverage: p.SizeByLeverage,
		Price:    p.Price,
		Strategy: p.Strategy,
		Order:    p.Order,
	}, nil
}

func (r *Router) handlePositions(c *gin.Context) {
	state, err := r.positions.AccountState(c.Request.Context())
	if err != nil {
		logger.Errorf("[api] positions failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account_value": state.AccountValue,
		"margin_used":   state.MarginUsed,
		"withdrawable":  state.Withdrawable(),
		"positions":     state.Positions,
		"updated_at":    state.UpdatedAt,
	})
}
