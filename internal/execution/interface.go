package execution

import (
	"context"

	"github.com/romanlevin/stockfighter/internal/domain"
)

// Dispatcher runs one complete dispatch cycle: place a time-bounded limit
// order, wait out the grace period, cancel the remainder, and report the
// cumulative fill. An error means the placement itself failed and no shares
// were consumed; the caller treats that dispatch as zero-filled and moves on.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent domain.OrderIntent) (domain.FillResult, error)
}
