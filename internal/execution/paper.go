package execution

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/romanlevin/stockfighter/internal/domain"
	"github.com/romanlevin/stockfighter/pkg/quant"
	"github.com/romanlevin/stockfighter/pkg/safe"
)

// PaperDispatcher simulates every order as a full fill at the limit price
// after the grace period. It never touches the venue.
type PaperDispatcher struct {
	grace time.Duration

	mu     sync.Mutex
	nextID int64
	spent  int64
	filled quant.Shares
}

// NewPaperDispatcher creates a simulated dispatcher.
func NewPaperDispatcher(grace time.Duration) *PaperDispatcher {
	return &PaperDispatcher{grace: grace, nextID: 1}
}

// Dispatch implements Dispatcher.
func (d *PaperDispatcher) Dispatch(ctx context.Context, intent domain.OrderIntent) (domain.FillResult, error) {
	select {
	case <-time.After(d.grace):
	case <-ctx.Done():
		return domain.FillResult{}, ctx.Err()
	}

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.filled += intent.Quantity
	d.spent = safe.Add(d.spent, safe.Mul(int64(intent.Quantity), int64(intent.LimitPrice)))
	spent := d.spent
	d.mu.Unlock()

	slog.Info("Simulated fill",
		slog.Int64("order_id", id),
		slog.Int64("qty", int64(intent.Quantity)),
		slog.String("price", intent.LimitPrice.String()),
		slog.String("total_spent", quant.Cents(spent).String()))

	return domain.FillResult{OrderID: id, Filled: intent.Quantity}, nil
}

// TotalSpent reports the simulated cash outlay in cents.
func (d *PaperDispatcher) TotalSpent() quant.Cents {
	d.mu.Lock()
	defer d.mu.Unlock()
	return quant.Cents(d.spent)
}

// TotalFilled reports the simulated cumulative fill.
func (d *PaperDispatcher) TotalFilled() quant.Shares {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filled
}
