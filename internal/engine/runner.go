package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/romanlevin/stockfighter/internal/domain"
	"github.com/romanlevin/stockfighter/internal/event"
	"github.com/romanlevin/stockfighter/internal/execution"
	"github.com/romanlevin/stockfighter/internal/storage"
	"github.com/romanlevin/stockfighter/pkg/quant"
)

// State is the run lifecycle phase.
type State int

const (
	StateStreaming State = iota // evaluating quotes, dispatching orders
	StateDraining               // no new dispatches, waiting out the in-flight one
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "STREAMING"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// RunStatus is the supervisor's view of the run: whether it has been called
// off externally, and the hard price ceiling if one has been disclosed.
type RunStatus struct {
	ClientsCeiling quant.Cents
	HasCeiling     bool
	Aborted        bool
}

// StatusSource answers status queries against the external supervisor.
type StatusSource interface {
	Status(ctx context.Context) (RunStatus, error)
}

// CheckpointSaver persists run progress for crash recovery.
type CheckpointSaver interface {
	Save(ctx context.Context, cp storage.Checkpoint) error
}

// RunnerConfig wires a Runner. Status, Checkpoints, OnProgress and
// StreamFatal are all optional.
type RunnerConfig struct {
	RunID       string
	Acquisition *domain.Acquisition
	Slot        *event.QuoteSlot
	Dispatcher  execution.Dispatcher
	Status      StatusSource
	Checkpoints CheckpointSaver
	OnProgress  func(event.Progress)
	// StreamFatal reports an unrecoverable quote feed. The runner drains and
	// returns the error unless the supervisor says the run was aborted.
	StreamFatal  <-chan error
	TickInterval time.Duration
	Logger       *slog.Logger
}

// Runner drives one acquisition run. It owns the only goroutine that touches
// the Acquisition state; dispatches run on a side goroutine with at most one
// in flight, results folded back in on the main loop.
type Runner struct {
	cfg   RunnerConfig
	log   *slog.Logger
	state State

	// status is re-polled every statusEveryTicks quiet ticks so an external
	// abort is noticed even when nothing fills.
	statusEveryTicks int
}

type dispatchResult struct {
	fill domain.FillResult
	err  error
}

// NewRunner creates a runner. TickInterval must be positive.
func NewRunner(cfg RunnerConfig) *Runner {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		cfg:              cfg,
		log:              log.With(slog.String("run_id", cfg.RunID)),
		state:            StateStreaming,
		statusEveryTicks: 10,
	}
}

// State returns the current lifecycle phase.
func (r *Runner) State() State {
	return r.state
}

// Run executes the acquisition until the budget is filled, the run is
// aborted externally, the quote feed dies, or the context is cancelled.
// It always returns a Summary; the error is non-nil only for a dead feed.
func (r *Runner) Run(ctx context.Context) (event.Summary, error) {
	acq := r.cfg.Acquisition

	r.log.Info("Run starting",
		slog.Int64("shares_to_buy", int64(acq.SharesToBuy())),
		slog.Int64("shares_bought", int64(acq.SharesBought())))

	aborted := r.pollStatus(ctx)

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	results := make(chan dispatchResult, 1)
	inFlight := false
	ticksSinceStatus := 0
	var feedErr error

	done := ctx.Done()

	for {
		if r.state == StateStreaming && (aborted || !acq.NeedMoreShares()) {
			r.enterDraining("budget filled or run aborted")
		}
		if r.state == StateDraining && !inFlight {
			break
		}

		select {
		case <-done:
			done = nil
			r.enterDraining("shutdown requested")

		case err, ok := <-r.cfg.StreamFatal:
			if !ok {
				continue
			}
			// The feed is gone for good. If the supervisor says the run
			// ended, that explains the hangup and is not a failure.
			if r.pollStatus(ctx) {
				aborted = true
			} else {
				feedErr = err
			}
			r.enterDraining("quote feed unrecoverable")

		case res := <-results:
			inFlight = false
			if res.err != nil {
				// A failed placement consumed no shares. Keep going.
				r.log.Warn("Dispatch failed", slog.Any("error", res.err))
				continue
			}
			if res.fill.Filled > 0 {
				acq.OnFill(res.fill.Filled, time.Now())
				r.log.Info("Fill",
					slog.Int64("order_id", res.fill.OrderID),
					slog.Int64("filled", int64(res.fill.Filled)),
					slog.Int64("bought", int64(acq.SharesBought())),
					slog.Int64("remaining", int64(acq.Remaining())),
					slog.String("target", acq.Target().String()))
				if r.pollStatus(ctx) {
					aborted = true
				}
				ticksSinceStatus = 0
				r.saveCheckpoint(ctx)
			}

		case <-ticker.C:
			if r.state != StateStreaming || inFlight {
				continue
			}

			ticksSinceStatus++
			if r.cfg.Status != nil && ticksSinceStatus >= r.statusEveryTicks {
				ticksSinceStatus = 0
				if r.pollStatus(ctx) {
					aborted = true
					continue
				}
			}

			quote, _, ok := r.cfg.Slot.Latest()
			// One progress event per decision tick, whatever the decision.
			r.emitProgress(time.Now(), quote.Ask)
			if !ok || !quote.Usable() {
				continue
			}

			now := time.Now()
			acq.InitCeiling(quote.Ask, now)
			if !acq.Evaluate(quote.Ask, now) {
				continue
			}
			qty := acq.BidSize(quote.AskSize)
			if qty <= 0 {
				continue
			}

			// Bid at the observed ask, not the ceiling: if the book moves
			// before placement the order just misses and the next tick
			// re-evaluates the fresh quote.
			intent := domain.OrderIntent{
				Direction:  domain.Buy,
				Quantity:   qty,
				LimitPrice: quote.Ask,
			}
			r.log.Info("Dispatching order",
				slog.Int64("qty", int64(qty)),
				slog.String("price", intent.LimitPrice.String()),
				slog.String("ask", quote.Ask.String()))
			inFlight = true
			go func() {
				fill, err := r.cfg.Dispatcher.Dispatch(ctx, intent)
				results <- dispatchResult{fill: fill, err: err}
			}()
		}
	}

	r.state = StateStopped

	summary := event.Summary{
		RunID:        r.cfg.RunID,
		SharesToBuy:  acq.SharesToBuy(),
		SharesBought: acq.SharesBought(),
		Shortfall:    acq.Remaining(),
		Aborted:      aborted,
	}
	r.log.Info("Run finished",
		slog.Int64("shares_bought", int64(summary.SharesBought)),
		slog.Int64("shortfall", int64(summary.Shortfall)),
		slog.Bool("aborted", summary.Aborted))
	return summary, feedErr
}

func (r *Runner) enterDraining(reason string) {
	if r.state != StateStreaming {
		return
	}
	r.state = StateDraining
	r.log.Info("Draining", slog.String("reason", reason))
}

// pollStatus queries the supervisor and folds any disclosed ceiling into the
// acquisition. Returns whether the run was aborted externally. Status
// queries must survive a cancelled run context so drain paths can still ask.
func (r *Runner) pollStatus(ctx context.Context) bool {
	if r.cfg.Status == nil {
		return false
	}
	qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	st, err := r.cfg.Status.Status(qctx)
	if err != nil {
		r.log.Warn("Status query failed", slog.Any("error", err))
		return false
	}
	if st.HasCeiling {
		r.cfg.Acquisition.ObserveClientsCeiling(st.ClientsCeiling)
	}
	if st.Aborted {
		r.log.Warn("Run aborted by supervisor")
	}
	return st.Aborted
}

func (r *Runner) saveCheckpoint(ctx context.Context) {
	if r.cfg.Checkpoints == nil {
		return
	}
	acq := r.cfg.Acquisition
	cp := storage.Checkpoint{
		RunID:          r.cfg.RunID,
		SharesBought:   acq.SharesBought(),
		Target:         acq.Target(),
		ClientsCeiling: acq.ClientsCeiling(),
		UpdatedAt:      time.Now(),
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.cfg.Checkpoints.Save(sctx, cp); err != nil {
		r.log.Warn("Checkpoint save failed", slog.Any("error", err))
	}
}

func (r *Runner) emitProgress(ts time.Time, ask quant.Cents) {
	if r.cfg.OnProgress == nil {
		return
	}
	acq := r.cfg.Acquisition
	r.cfg.OnProgress(event.Progress{
		RunID:        r.cfg.RunID,
		Ts:           ts,
		Target:       acq.Target(),
		Ask:          ask,
		SharesBought: acq.SharesBought(),
		Remaining:    acq.Remaining(),
	})
}
