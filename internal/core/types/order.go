package types

// Order is the immutable message a caller submits to an Engine or
// MultiEngine. Price is nil for Market orders and must be set for Limit
// orders.
type Order struct {
	OrderID       OrderID
	ClientOrderID string
	InstrumentID  InstrumentID
	Side          Side
	Type          OrderType
	Quantity      Decimal
	Price         *Decimal
	TIF           TimeInForce
	Timestamp     uint64
	TraderID      TraderID
}

// HasPrice reports whether the order carries a limit price.
func (o Order) HasPrice() bool {
	return o.Price != nil
}

// RestingOrder is the subset of an Order that survives on the book after a
// partial or zero fill. Client-order-id, timestamp and TIF are deliberately
// not retained: GTC is implicit for anything still resting.
type RestingOrder struct {
	OrderID      OrderID
	InstrumentID InstrumentID
	Side         Side
	Price        Decimal
	Remaining    Decimal
	TraderID     TraderID
}

// Fill is a transient record of one resting order being matched against an
// aggressor. It is never published on its own; the matcher turns each Fill
// into one Trade and one ExecutionReport.
type Fill struct {
	RestingOrderID     OrderID
	RestingTraderID    TraderID
	Price              Decimal
	Quantity           Decimal
	RestingFullyFilled bool
}

// Trade is the published side-effect of one Fill.
type Trade struct {
	TradeID      TradeID
	InstrumentID InstrumentID
	BuyOrderID   OrderID
	SellOrderID  OrderID
	Price        Decimal
	Quantity     Decimal
	Timestamp    uint64
	Aggressor    Side
}

// ExecutionReport is the published state-change record for an order.
type ExecutionReport struct {
	OrderID           OrderID
	ExecID            ExecutionID
	ExecType          ExecType
	OrderStatus       OrderStatus
	FilledQuantity    Decimal
	RemainingQuantity Decimal
	AvgPrice          *Decimal
	LastQty           *Decimal
	LastPx            *Decimal
	Timestamp         uint64
}
