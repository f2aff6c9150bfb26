package stockfighter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/romanlevin/stockfighter/internal/event"
	"github.com/romanlevin/stockfighter/internal/infra"
)

// TickertapeWorker maintains the per-stock quote subscription on top of
// BaseWSWorker. The subscription is keyed in the URL, so connecting is the
// whole handshake. Each quote frame lands in the quote slot; the slot itself
// discards repeated snapshots.
type TickertapeWorker struct {
	base    *infra.BaseWSWorker
	wsURL   string
	account string
	venue   string
	stock   string
	slot    *event.QuoteSlot
}

// NewTickertapeWorker creates the quote stream consumer.
func NewTickertapeWorker(cfg *infra.Config, slot *event.QuoteSlot) *TickertapeWorker {
	w := &TickertapeWorker{
		wsURL:   cfg.Venue.WSURL,
		account: cfg.Venue.Account,
		venue:   cfg.Venue.Venue,
		stock:   cfg.Venue.Stock,
		slot:    slot,
	}
	w.base = infra.NewBaseWSWorker(w)
	w.base.MaxRetries = 10
	return w
}

// ID returns the worker identifier.
func (w *TickertapeWorker) ID() string { return "TICKERTAPE" }

// GetURL returns the per-instrument tickertape endpoint.
func (w *TickertapeWorker) GetURL() string {
	return fmt.Sprintf("%s/%s/venues/%s/tickertape/stocks/%s",
		w.wsURL, w.account, w.venue, w.stock)
}

// Connect starts the subscription.
func (w *TickertapeWorker) Connect(ctx context.Context) {
	w.base.Start(ctx)
}

// Disconnect stops it cooperatively.
func (w *TickertapeWorker) Disconnect() {
	w.base.Stop()
}

// Fatal reports abandoned reconnection; ordinary disconnects never show up
// here.
func (w *TickertapeWorker) Fatal() <-chan error {
	return w.base.Fatal()
}

// OnConnect is a no-op: the URL is the subscription.
func (w *TickertapeWorker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	return nil
}

// OnMessage publishes quote frames to the slot. Frames without a quote
// payload, and quotes without an ask side, are skipped.
func (w *TickertapeWorker) OnMessage(ctx context.Context, msg []byte) {
	var frame tickerMessage
	if err := json.Unmarshal(msg, &frame); err != nil || frame.Quote == nil {
		return
	}

	q := frame.Quote.toDomain()
	if !q.Usable() {
		return
	}
	w.slot.Publish(q)
}
