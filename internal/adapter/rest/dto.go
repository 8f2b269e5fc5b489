package rest

import (
	"github.com/shopspring/decimal"

	"github.com/ionex-markets/matchcore/internal/core/types"
)

// OrderRequest is the wire shape POST /v1/orders and PUT /v1/orders/:id
// accept. Price is a string so exact decimal precision survives JSON.
type OrderRequest struct {
	OrderID       uint64 `json:"order_id" binding:"required"`
	ClientOrderID string `json:"client_order_id"`
	InstrumentID  uint64 `json:"instrument_id" binding:"required"`
	Side          string `json:"side" binding:"required,oneof=buy sell"`
	Type          string `json:"type" binding:"required,oneof=limit market"`
	Quantity      string `json:"quantity" binding:"required"`
	Price         string `json:"price"`
	TIF           string `json:"tif" binding:"required,oneof=GTC IOC FOK"`
	Timestamp     uint64 `json:"timestamp"`
	TraderID      uint64 `json:"trader_id"`
}

// toOrder converts the validated request into a types.Order. Returns an
// error if quantity/price fail to parse as decimals.
func (r OrderRequest) toOrder() (types.Order, error) {
	qty, err := decimal.NewFromString(r.Quantity)
	if err != nil {
		return types.Order{}, err
	}

	var pricePtr *types.Decimal
	if r.Price != "" {
		px, err := decimal.NewFromString(r.Price)
		if err != nil {
			return types.Order{}, err
		}
		pricePtr = &px
	}

	side := types.Buy
	if r.Side == "sell" {
		side = types.Sell
	}
	orderType := types.Limit
	if r.Type == "market" {
		orderType = types.Market
	}
	var tif types.TimeInForce
	switch r.TIF {
	case "IOC":
		tif = types.IOC
	case "FOK":
		tif = types.FOK
	default:
		tif = types.GTC
	}

	return types.Order{
		OrderID:       types.OrderID(r.OrderID),
		ClientOrderID: r.ClientOrderID,
		InstrumentID:  types.InstrumentID(r.InstrumentID),
		Side:          side,
		Type:          orderType,
		Quantity:      qty,
		Price:         pricePtr,
		TIF:           tif,
		Timestamp:     r.Timestamp,
		TraderID:      types.TraderID(r.TraderID),
	}, nil
}

// TradeResponse is the wire shape of one produced types.Trade.
type TradeResponse struct {
	TradeID      uint64 `json:"trade_id"`
	InstrumentID uint64 `json:"instrument_id"`
	BuyOrderID   uint64 `json:"buy_order_id"`
	SellOrderID  uint64 `json:"sell_order_id"`
	Price        string `json:"price"`
	Quantity     string `json:"quantity"`
	Timestamp    uint64 `json:"timestamp"`
	Aggressor    string `json:"aggressor"`
}

// ExecutionReportResponse is the wire shape of one produced
// types.ExecutionReport.
type ExecutionReportResponse struct {
	OrderID           uint64  `json:"order_id"`
	ExecID            uint64  `json:"exec_id"`
	ExecType          string  `json:"exec_type"`
	OrderStatus       string  `json:"order_status"`
	FilledQuantity    string  `json:"filled_quantity"`
	RemainingQuantity string  `json:"remaining_quantity"`
	AvgPrice          *string `json:"avg_price,omitempty"`
	LastQty           *string `json:"last_qty,omitempty"`
	LastPx            *string `json:"last_px,omitempty"`
	Timestamp         uint64  `json:"timestamp"`
}

// SubmitResponse is the body of a successful submit/modify response.
type SubmitResponse struct {
	IdempotencyKey string                    `json:"idempotency_key"`
	Trades         []TradeResponse           `json:"trades"`
	Reports        []ExecutionReportResponse `json:"reports"`
}

func mapTrades(trades []types.Trade) []TradeResponse {
	out := make([]TradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, TradeResponse{
			TradeID:      uint64(t.TradeID),
			InstrumentID: uint64(t.InstrumentID),
			BuyOrderID:   uint64(t.BuyOrderID),
			SellOrderID:  uint64(t.SellOrderID),
			Price:        t.Price.String(),
			Quantity:     t.Quantity.String(),
			Timestamp:    t.Timestamp,
			Aggressor:    t.Aggressor.String(),
		})
	}
	return out
}

func mapReports(reports []types.ExecutionReport) []ExecutionReportResponse {
	out := make([]ExecutionReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, ExecutionReportResponse{
			OrderID:           uint64(r.OrderID),
			ExecID:            uint64(r.ExecID),
			ExecType:          r.ExecType.String(),
			OrderStatus:       r.OrderStatus.String(),
			FilledQuantity:    r.FilledQuantity.String(),
			RemainingQuantity: r.RemainingQuantity.String(),
			AvgPrice:          decimalString(r.AvgPrice),
			LastQty:           decimalString(r.LastQty),
			LastPx:            decimalString(r.LastPx),
			Timestamp:         r.Timestamp,
		})
	}
	return out
}

func decimalString(d *types.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// InstrumentResponse is the wire shape of GET /v1/instruments entries.
type InstrumentResponse struct {
	InstrumentID uint64 `json:"instrument_id"`
	Symbol       string `json:"symbol"`
}

// TopOfBookResponse is the wire shape of GET /v1/instruments/:id/book.
type TopOfBookResponse struct {
	InstrumentID uint64  `json:"instrument_id"`
	BestBid      *string `json:"best_bid,omitempty"`
	BestAsk      *string `json:"best_ask,omitempty"`
}
