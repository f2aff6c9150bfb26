package event

import (
	"sync"

	"github.com/romanlevin/stockfighter/internal/domain"
)

// QuoteSlot is a single-slot, last-write-wins cell holding the most recently
// observed quote. One writer (the stream consumer), one reader (the engine
// loop). Intermediate quotes are legitimately dropped: only the latest
// market state matters for decisions.
type QuoteSlot struct {
	mu      sync.RWMutex
	quote   domain.Quote
	version uint64
	set     bool
}

func NewQuoteSlot() *QuoteSlot {
	return &QuoteSlot{}
}

// Publish stores a quote if it differs from the current one. Returns whether
// the slot changed; a repeated snapshot is silently discarded so downstream
// work is not re-triggered for identical data.
func (s *QuoteSlot) Publish(q domain.Quote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set && s.quote.Equal(q) {
		return false
	}
	s.quote = q
	s.version++
	s.set = true
	return true
}

// Latest returns the most recent quote, its version, and whether anything
// has been published yet. Reading is advisory: an unset slot just means
// "skip this tick".
func (s *QuoteSlot) Latest() (domain.Quote, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quote, s.version, s.set
}
