// Package rest exposes the MatchingEngine over HTTP: a thin gin router that
// marshals requests into types.Order, calls into the engine, and maps the
// closed matcherr taxonomy to status codes.
package rest

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ionex-markets/matchcore/internal/core/matcherr"
	"github.com/ionex-markets/matchcore/internal/core/types"
	"github.com/ionex-markets/matchcore/pkg/matchingengine"
)

// Publisher receives the (trades, reports) produced by one submit/modify
// call, in the exact order the engine returned them, so a downstream feed
// (wsfeed.Hub) can fan them out. Publish is called after the lock held by
// the engine call has already been released.
type Publisher interface {
	Publish(instrumentID types.InstrumentID, trades []types.Trade, reports []types.ExecutionReport)
}

// Handler wires a MatchingEngine (normally a *matchingengine.Locked) into a
// gin router.
type Handler struct {
	engine    matchingengine.MatchingEngine
	gate      *Gate
	logger    *zap.Logger
	publisher Publisher
}

// NewHandler creates a Handler over engine, gated by gate. publisher may be
// nil, in which case produced trades/reports are only returned in the HTTP
// response and never fanned out to a feed.
func NewHandler(engine matchingengine.MatchingEngine, gate *Gate, logger *zap.Logger, publisher Publisher) *Handler {
	return &Handler{engine: engine, gate: gate, logger: logger, publisher: publisher}
}

func (h *Handler) publish(instrumentID types.InstrumentID, trades []types.Trade, reports []types.ExecutionReport) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish(instrumentID, trades, reports)
}

// RegisterRoutes mounts the venue's HTTP surface on router.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/v1")
	v1.POST("/orders", h.submitOrder)
	v1.DELETE("/orders/:id", h.cancelOrder)
	v1.PUT("/orders/:id", h.modifyOrder)
	v1.GET("/instruments", h.listInstruments)
	v1.GET("/instruments/:id/book", h.bookSnapshot)
	v1.PUT("/admin/gate", h.setGate)
}

// NewRouter builds a gin.Engine with CORS enabled and h's routes mounted.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	h.RegisterRoutes(router)
	return router
}

func (h *Handler) submitOrder(c *gin.Context) {
	if !h.gate.Open() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market is closed"})
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := req.toOrder()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trades, reports, err := h.engine.Submit(order)
	if err != nil {
		h.logger.Error("submit failed", zap.Error(err), zap.Uint64("order_id", req.OrderID))
		writeError(c, err)
		return
	}
	h.publish(order.InstrumentID, trades, reports)
	c.JSON(http.StatusOK, SubmitResponse{
		IdempotencyKey: uuid.NewString(),
		Trades:         mapTrades(trades),
		Reports:        mapReports(reports),
	})
}

func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	// Cancel is never gated (spec.md §6(d)): always reachable regardless
	// of market state.
	instrumentID, canceled := h.engine.Cancel(orderID)
	c.JSON(http.StatusOK, gin.H{
		"canceled":      canceled,
		"instrument_id": uint64(instrumentID),
	})
}

func (h *Handler) modifyOrder(c *gin.Context) {
	if !h.gate.Open() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market is closed"})
		return
	}

	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	replacement, err := req.toOrder()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trades, reports, err := h.engine.Modify(orderID, replacement)
	if err != nil {
		h.logger.Error("modify failed", zap.Error(err), zap.Uint64("order_id", uint64(orderID)))
		writeError(c, err)
		return
	}
	h.publish(replacement.InstrumentID, trades, reports)
	c.JSON(http.StatusOK, SubmitResponse{
		IdempotencyKey: uuid.NewString(),
		Trades:         mapTrades(trades),
		Reports:        mapReports(reports),
	})
}

func (h *Handler) listInstruments(c *gin.Context) {
	instruments := h.engine.ListInstruments()
	out := make([]InstrumentResponse, 0, len(instruments))
	for _, i := range instruments {
		out = append(out, InstrumentResponse{InstrumentID: uint64(i.InstrumentID), Symbol: i.Symbol})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) bookSnapshot(c *gin.Context) {
	instrumentID, ok := parseInstrumentID(c)
	if !ok {
		return
	}
	top, found := h.engine.BookSnapshot(instrumentID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown instrument"})
		return
	}
	c.JSON(http.StatusOK, TopOfBookResponse{
		InstrumentID: uint64(top.InstrumentID),
		BestBid:      decimalString(top.BestBid),
		BestAsk:      decimalString(top.BestAsk),
	})
}

// setGate is the admin-only toggle spec.md §6(d) describes: flips whether
// submit/modify currently accept new orders. Cancel is unaffected.
func (h *Handler) setGate(c *gin.Context) {
	var req struct {
		Open bool `json:"open"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.gate.SetOpen(req.Open)
	h.logger.Info("market gate toggled", zap.Bool("open", req.Open))
	c.JSON(http.StatusOK, gin.H{"open": req.Open})
}

// writeError maps the closed matcherr taxonomy to an HTTP status. A
// programmer-error Go error with no matcherr.Kind (should not happen on
// this boundary) falls back to 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	for kind, code := range statusByKind {
		if matcherr.Is(err, kind) {
			status = code
			break
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var statusByKind = map[matcherr.Kind]int{
	matcherr.InvalidOrder:        http.StatusBadRequest,
	matcherr.InstrumentMismatch:  http.StatusBadRequest,
	matcherr.UnknownInstrument:   http.StatusNotFound,
	matcherr.UnknownOrder:        http.StatusNotFound,
	matcherr.InstrumentInUse:     http.StatusConflict,
	matcherr.DuplicateInstrument: http.StatusConflict,
}

func parseOrderID(c *gin.Context) (types.OrderID, bool) {
	id, ok := parseUint(c, "id")
	return types.OrderID(id), ok
}

func parseInstrumentID(c *gin.Context) (types.InstrumentID, bool) {
	id, ok := parseUint(c, "id")
	return types.InstrumentID(id), ok
}
