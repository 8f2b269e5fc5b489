// Package wsfeed fans out trades and execution reports to WebSocket
// subscribers, grounded on the teacher's client-registry/read-pump/
// write-pump shape (internal/api/websocket/pairs_ws.go), adapted from a
// polling push model to an event-driven one: Hub.Publish is called once per
// submit/modify, in the exact (trades, reports) order the core returned.
package wsfeed

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ionex-markets/matchcore/internal/core/types"
)

const clientSendBuffer = 64

// update is the wire message pushed to subscribed clients.
type update struct {
	Type         string               `json:"type"`
	InstrumentID uint64               `json:"instrument_id"`
	Trade        *tradeWire           `json:"trade,omitempty"`
	Report       *executionReportWire `json:"report,omitempty"`
}

type tradeWire struct {
	TradeID     uint64 `json:"trade_id"`
	BuyOrderID  uint64 `json:"buy_order_id"`
	SellOrderID uint64 `json:"sell_order_id"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	Aggressor   string `json:"aggressor"`
}

type executionReportWire struct {
	OrderID     uint64 `json:"order_id"`
	ExecType    string `json:"exec_type"`
	OrderStatus string `json:"order_status"`
}

// client is one connected subscriber: a socket plus the set of instrument
// ids it wants updates for.
type client struct {
	conn          *websocket.Conn
	send          chan update
	subscriptions map[types.InstrumentID]bool
	mu            sync.RWMutex
}

func (c *client) subscribed(id types.InstrumentID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[id]
}

// Hub tracks every connected client and their subscriptions, and fans out
// Publish calls to the ones that care.
type Hub struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[*client]bool)}
}

// HandleConnection registers conn and starts its read/write pumps. Blocks
// until the connection closes.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	c := &client{
		conn:          conn,
		send:          make(chan update, clientSendBuffer),
		subscriptions: make(map[types.InstrumentID]bool),
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.writePump(c)
		close(done)
	}()
	h.readPump(c)

	// Unregister before closing c.send so no Publish can send on it, then
	// let the write pump drain and exit.
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	close(c.send)
	<-done
	conn.Close()
}

// readPump parses {"action":"subscribe"|"unsubscribe","instrument_ids":[...]}
// control messages from the client.
func (h *Hub) readPump(c *client) {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("websocket read error", zap.Error(err))
			}
			return
		}

		var msg struct {
			Action        string   `json:"action"`
			InstrumentIDs []uint64 `json:"instrument_ids"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			h.logger.Error("failed to parse websocket message", zap.Error(err))
			continue
		}

		c.mu.Lock()
		switch msg.Action {
		case "subscribe":
			for _, id := range msg.InstrumentIDs {
				c.subscriptions[types.InstrumentID(id)] = true
			}
		case "unsubscribe":
			for _, id := range msg.InstrumentIDs {
				delete(c.subscriptions, types.InstrumentID(id))
			}
		default:
			h.logger.Warn("unknown websocket action", zap.String("action", msg.Action))
		}
		c.mu.Unlock()
	}
}

// writePump drains c.send to the socket until it is closed.
func (h *Hub) writePump(c *client) {
	for u := range c.send {
		if err := c.conn.WriteJSON(u); err != nil {
			h.logger.Error("failed to send websocket update", zap.Error(err))
			return
		}
	}
}

// Publish fans trades and reports for instrumentID out to subscribed
// clients, in the order supplied. A slow client's buffer overflowing drops
// its update rather than blocking the publisher.
func (h *Hub) Publish(instrumentID types.InstrumentID, trades []types.Trade, reports []types.ExecutionReport) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, t := range trades {
		u := update{
			Type:         "trade",
			InstrumentID: uint64(instrumentID),
			Trade: &tradeWire{
				TradeID:     uint64(t.TradeID),
				BuyOrderID:  uint64(t.BuyOrderID),
				SellOrderID: uint64(t.SellOrderID),
				Price:       t.Price.String(),
				Quantity:    t.Quantity.String(),
				Aggressor:   t.Aggressor.String(),
			},
		}
		h.broadcast(instrumentID, u)
	}
	for _, r := range reports {
		u := update{
			Type:         "execution_report",
			InstrumentID: uint64(instrumentID),
			Report: &executionReportWire{
				OrderID:     uint64(r.OrderID),
				ExecType:    r.ExecType.String(),
				OrderStatus: r.OrderStatus.String(),
			},
		}
		h.broadcast(instrumentID, u)
	}
}

func (h *Hub) broadcast(instrumentID types.InstrumentID, u update) {
	for c := range h.clients {
		if !c.subscribed(instrumentID) {
			continue
		}
		select {
		case c.send <- u:
		default:
			h.logger.Warn("dropping websocket update for slow client", zap.Uint64("instrument_id", uint64(instrumentID)))
		}
	}
}
