package event

import (
	"time"

	"github.com/romanlevin/stockfighter/pkg/quant"
)

// Progress is the structured per-tick observation of a run: current ceiling,
// latest ask, and cumulative fills. Emitted for an external supervisor, not
// only as formatted log text.
type Progress struct {
	RunID        string       `json:"run_id"`
	Ts           time.Time    `json:"ts"`
	Target       quant.Cents  `json:"target"`
	Ask          quant.Cents  `json:"ask"`
	SharesBought quant.Shares `json:"shares_bought"`
	Remaining    quant.Shares `json:"remaining"`
}

// Summary is the terminal report of a run.
type Summary struct {
	RunID        string       `json:"run_id"`
	SharesToBuy  quant.Shares `json:"shares_to_buy"`
	SharesBought quant.Shares `json:"shares_bought"`
	Shortfall    quant.Shares `json:"shortfall"`
	Aborted      bool         `json:"aborted"`
}
