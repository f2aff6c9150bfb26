package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/romanlevin/stockfighter/internal/domain"
	"github.com/romanlevin/stockfighter/internal/infra"
	"github.com/romanlevin/stockfighter/internal/infra/stockfighter"
)

// OrderClient is the slice of the venue client the dispatcher needs.
type OrderClient interface {
	PlaceOrder(ctx context.Context, intent domain.OrderIntent) (stockfighter.OrderResult, error)
	CancelOrder(ctx context.Context, orderID int64) (stockfighter.OrderResult, error)
	OrderStatus(ctx context.Context, orderID int64) (stockfighter.OrderResult, error)
}

// LiveDispatcher places real orders. The fire, wait, cancel-remainder cycle
// bounds how long capital is exposed per order and guarantees no resting
// orders accumulate. Order entry sits behind a circuit breaker so a dead
// venue stops eating ticks in transport timeouts.
type LiveDispatcher struct {
	client  OrderClient
	breaker *infra.CircuitBreaker
	grace   time.Duration
}

// NewLiveDispatcher creates a dispatcher over a venue client.
func NewLiveDispatcher(client OrderClient, grace time.Duration) *LiveDispatcher {
	return &LiveDispatcher{
		client:  client,
		breaker: infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("order-entry")),
		grace:   grace,
	}
}

// Dispatch implements Dispatcher.
func (d *LiveDispatcher) Dispatch(ctx context.Context, intent domain.OrderIntent) (domain.FillResult, error) {
	if !d.breaker.Allow() {
		return domain.FillResult{}, fmt.Errorf("order entry suspended by circuit breaker")
	}

	placed, err := d.client.PlaceOrder(ctx, intent)
	if err != nil {
		d.breaker.RecordFailure()
		return domain.FillResult{}, err
	}
	d.breaker.RecordSuccess()

	if !placed.Open {
		// Filled (or rejected to zero) before we even got the response back.
		return domain.FillResult{OrderID: placed.ID, Filled: placed.TotalFilled}, nil
	}

	// Let partial fills accumulate. A cancelled run cuts the wait short but
	// still cancels the remainder below.
	select {
	case <-time.After(d.grace):
	case <-ctx.Done():
	}

	// The cancel must go out even when the run context is already dead,
	// otherwise the order rests on the book unbounded.
	cancelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	res, err := d.client.CancelOrder(cancelCtx, placed.ID)
	if err == nil {
		return domain.FillResult{OrderID: placed.ID, Filled: res.TotalFilled}, nil
	}

	// A cancel can race the fill: the order may already be closed, which is
	// a no-op outcome, not an error. Ask for the final state instead.
	status, serr := d.client.OrderStatus(cancelCtx, placed.ID)
	if serr == nil {
		return domain.FillResult{OrderID: placed.ID, Filled: status.TotalFilled}, nil
	}

	slog.Warn("Cancel and status both failed, using fill at placement time",
		slog.Int64("order_id", placed.ID),
		slog.Any("cancel_error", err),
		slog.Any("status_error", serr))
	return domain.FillResult{OrderID: placed.ID, Filled: placed.TotalFilled}, nil
}
