package stockfighter

import (
	"fmt"

	"github.com/romanlevin/stockfighter/internal/domain"
	"github.com/romanlevin/stockfighter/pkg/quant"
)

// APIError is an application-level rejection from the venue: the transport
// worked but the request was refused (ok:false envelope).
type APIError struct {
	Msg        string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("venue API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("venue API error: %s", e.Msg)
}

// envelope is the common {ok, error} wrapper on every venue response.
type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// quotePayload is the wire form of a quote. Price fields are integer cents;
// a missing ask side simply leaves Ask at zero.
type quotePayload struct {
	Venue     string `json:"venue"`
	Symbol    string `json:"symbol"`
	Bid       int64  `json:"bid"`
	BidSize   int64  `json:"bidSize"`
	Ask       int64  `json:"ask"`
	AskSize   int64  `json:"askSize"`
	Last      int64  `json:"last"`
	LastSize  int64  `json:"lastSize"`
	QuoteTime string `json:"quoteTime"`
}

func (q quotePayload) toDomain() domain.Quote {
	return domain.Quote{
		Venue:   q.Venue,
		Symbol:  q.Symbol,
		Bid:     quant.Cents(q.Bid),
		BidSize: quant.Shares(q.BidSize),
		Ask:     quant.Cents(q.Ask),
		AskSize: quant.Shares(q.AskSize),
		Last:    quant.Cents(q.Last),
	}
}

// quoteResponse is a one-shot GET quote.
type quoteResponse struct {
	envelope
	quotePayload
}

// tickerMessage is one tickertape frame; quote may be absent on
// housekeeping frames.
type tickerMessage struct {
	OK    bool          `json:"ok"`
	Quote *quotePayload `json:"quote"`
}

// orderRequest is the order entry body.
type orderRequest struct {
	Account   string `json:"account"`
	Venue     string `json:"venue"`
	Symbol    string `json:"symbol"`
	Qty       int64  `json:"qty"`
	Direction string `json:"direction"`
	OrderType string `json:"orderType"`
	Price     int64  `json:"price"`
}

// orderResponse is returned by place, cancel, and status calls alike.
type orderResponse struct {
	envelope
	ID          int64  `json:"id"`
	Direction   string `json:"direction"`
	OriginalQty int64  `json:"originalQty"`
	Qty         int64  `json:"qty"` // still open
	Price       int64  `json:"price"`
	TotalFilled int64  `json:"totalFilled"`
	Open        bool   `json:"open"`
}

// OrderResult is the client's view of an order after any call.
type OrderResult struct {
	ID          int64
	TotalFilled quant.Shares
	Open        bool
}

func (r orderResponse) toResult() OrderResult {
	return OrderResult{
		ID:          r.ID,
		TotalFilled: quant.Shares(r.TotalFilled),
		Open:        r.Open,
	}
}
