package domain

import (
	"github.com/romanlevin/stockfighter/pkg/quant"
)

// Quote is one observed snapshot of the top of the order book.
// Immutable once observed. A zero Ask means the venue reported no ask side;
// such quotes are unusable for buy decisions.
type Quote struct {
	Venue   string
	Symbol  string
	Bid     quant.Cents
	BidSize quant.Shares
	Ask     quant.Cents
	AskSize quant.Shares
	Last    quant.Cents
}

// Usable reports whether the quote carries an ask side at all.
// AskSize zero with a valid ask is still usable; it just never permits a buy.
func (q Quote) Usable() bool {
	return q.Ask > 0
}

// Equal compares all observed fields. Used to suppress duplicate snapshots.
func (q Quote) Equal(other Quote) bool {
	return q == other
}
