package domain

import (
	"github.com/romanlevin/stockfighter/pkg/quant"
)

// Direction of an order.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// OrderType matches the venue's order type strings.
type OrderType string

const (
	TypeLimit             OrderType = "limit"
	TypeMarket            OrderType = "market"
	TypeFillOrKill        OrderType = "fill-or-kill"
	TypeImmediateOrCancel OrderType = "immediate-or-cancel"
)

// OrderIntent is one decision to trade, constructed fresh per dispatch.
type OrderIntent struct {
	Direction  Direction
	Quantity   quant.Shares
	LimitPrice quant.Cents
}

// FillResult is the outcome of one dispatch cycle: the order that was placed
// and how much of it executed before the remainder was cancelled.
type FillResult struct {
	OrderID int64
	Filled  quant.Shares
}
