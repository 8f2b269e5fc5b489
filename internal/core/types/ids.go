// Package types holds the value types shared by the book, matcher, engine
// and venue packages: identifiers, sides, order/TIF/status enums, and the
// Order/RestingOrder/Fill/Trade/ExecutionReport records.
package types

// OrderID identifies one order for its entire lifetime. Order ids are
// caller-supplied and must be unique within one MultiEngine.
type OrderID uint64

// TradeID identifies one executed trade. Assigned by the matcher from the
// engine's monotonic counter.
type TradeID uint64

// ExecutionID identifies one ExecutionReport. Assigned the same way as
// TradeID, from a separate counter.
type ExecutionID uint64

// InstrumentID identifies a tradable instrument (one order book).
type InstrumentID uint64

// TraderID identifies the submitter of an order, used for self-trade
// prevention.
type TraderID uint64
