package stockfighter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/romanlevin/stockfighter/internal/event"
)

// QuotePoller is the fallback quote source for venues (or runs) without a
// working tickertape: it polls the REST quote endpoint on a fixed interval
// and feeds the same slot the stream consumer would. Fetch errors are
// logged and retried on the next tick, never fatal.
type QuotePoller struct {
	client   *Client
	slot     *event.QuoteSlot
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewQuotePoller creates a poller over an existing venue client.
func NewQuotePoller(client *Client, slot *event.QuoteSlot, interval time.Duration) *QuotePoller {
	return &QuotePoller{
		client:   client,
		slot:     slot,
		interval: interval,
	}
}

// Start begins polling. Returns immediately.
func (p *QuotePoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.fetch(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.fetch(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit.
func (p *QuotePoller) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.wg.Wait()
	}
}

func (p *QuotePoller) fetch(ctx context.Context) {
	q, err := p.client.Quote(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Quote poll failed", slog.Any("error", err))
		}
		return
	}
	if !q.Usable() {
		return
	}
	p.slot.Publish(q)
}
