package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/romanlevin/stockfighter/pkg/quant"
	"github.com/romanlevin/stockfighter/pkg/safe"
)

// Acquisition owns the adaptive price ceiling and fill accounting for one
// run. It is pure decision logic: no I/O, no clocks of its own (callers pass
// the current time), and it must only ever be touched by the engine loop.
//
// Ceiling rules:
//   - First usable ask initializes the ceiling to ask x threshold (< 1),
//     biasing it slightly below the first observed market.
//   - A quote above the ceiling raises it by the step factor, at most once
//     per quiet interval, so a market that never revisits the initial
//     ceiling cannot stall the run forever.
//   - A successful fill tightens the ceiling by the threshold factor, on
//     the premise that a filled order means the market trades lower.
//   - The ceiling never exceeds the client's ceiling once that is known.
type Acquisition struct {
	sharesToBuy  quant.Shares
	sharesBought quant.Shares

	target         quant.Cents // 0 = not yet initialized
	clientsCeiling quant.Cents // 0 = not yet known

	threshold     decimal.Decimal // < 1, default 0.95
	raiseStep     decimal.Decimal // > 1, default 1.01
	quietInterval time.Duration
	lastAdjusted  time.Time
}

// NewAcquisition creates the state for one acquisition run.
func NewAcquisition(toBuy quant.Shares, threshold, raiseStep decimal.Decimal, quietInterval time.Duration) *Acquisition {
	return &Acquisition{
		sharesToBuy:   toBuy,
		threshold:     threshold,
		raiseStep:     raiseStep,
		quietInterval: quietInterval,
	}
}

// InitCeiling sets the ceiling from the first usable ask. No-op once set.
func (a *Acquisition) InitCeiling(ask quant.Cents, now time.Time) {
	if a.target != 0 || ask <= 0 {
		return
	}
	a.target = a.clamp(quant.ApplyFactor(ask, a.threshold))
	a.lastAdjusted = now
}

// SeedCeiling sets both the ceiling and the client's ceiling from an
// externally known limit, skipping the first-ask bias. Used when the run is
// started with the client's price already in hand.
func (a *Acquisition) SeedCeiling(limit quant.Cents, now time.Time) {
	if limit <= 0 {
		return
	}
	a.clientsCeiling = limit
	a.target = limit
	a.lastAdjusted = now
}

// Evaluate reports whether a buy at the given ask is permitted. When the ask
// is above the ceiling and a full quiet interval has passed since the last
// adjustment, the ceiling is raised one step before returning false.
func (a *Acquisition) Evaluate(ask quant.Cents, now time.Time) bool {
	if a.target == 0 || ask <= 0 {
		return false
	}
	if ask <= a.target {
		return true
	}

	if now.Sub(a.lastAdjusted) >= a.quietInterval {
		a.target = a.clamp(quant.ApplyFactor(a.target, a.raiseStep))
		a.lastAdjusted = now
	}
	return false
}

// OnFill folds a dispatch result into the accounting. A positive fill
// tightens the ceiling and resets the quiet-interval timer.
func (a *Acquisition) OnFill(filled quant.Shares, now time.Time) {
	if filled <= 0 {
		return
	}
	bought := quant.Shares(safe.Add(int64(a.sharesBought), int64(filled)))
	if bought > a.sharesToBuy {
		bought = a.sharesToBuy
	}
	a.sharesBought = bought

	a.target = a.clamp(quant.ApplyFactor(a.target, a.threshold))
	a.lastAdjusted = now
}

// BidSize bounds an order by both the remaining budget and the offered size.
func (a *Acquisition) BidSize(askSize quant.Shares) quant.Shares {
	return quant.MinShares(a.Remaining(), askSize)
}

// NeedMoreShares is the run's continuation condition.
func (a *Acquisition) NeedMoreShares() bool {
	return a.sharesBought < a.sharesToBuy
}

// ObserveClientsCeiling records the externally discovered hard ceiling and
// clamps the target down if it currently exceeds it.
func (a *Acquisition) ObserveClientsCeiling(limit quant.Cents) {
	if limit <= 0 {
		return
	}
	a.clientsCeiling = limit
	if a.target > limit {
		a.target = limit
	}
}

// Restore rehydrates accounting from a checkpoint of a previous run.
func (a *Acquisition) Restore(bought quant.Shares, target, clientsCeiling quant.Cents, now time.Time) {
	if bought < 0 {
		bought = 0
	}
	if bought > a.sharesToBuy {
		bought = a.sharesToBuy
	}
	a.sharesBought = bought
	a.target = target
	a.clientsCeiling = clientsCeiling
	a.lastAdjusted = now
}

func (a *Acquisition) clamp(c quant.Cents) quant.Cents {
	if a.clientsCeiling > 0 && c > a.clientsCeiling {
		return a.clientsCeiling
	}
	return c
}

func (a *Acquisition) Remaining() quant.Shares {
	return quant.Shares(safe.Sub(int64(a.sharesToBuy), int64(a.sharesBought)))
}

func (a *Acquisition) Target() quant.Cents         { return a.target }
func (a *Acquisition) ClientsCeiling() quant.Cents { return a.clientsCeiling }
func (a *Acquisition) SharesBought() quant.Shares  { return a.sharesBought }
func (a *Acquisition) SharesToBuy() quant.Shares   { return a.sharesToBuy }
