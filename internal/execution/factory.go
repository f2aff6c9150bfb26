package execution

import (
	"fmt"
	"os"

	"github.com/romanlevin/stockfighter/internal/infra"
	"github.com/romanlevin/stockfighter/internal/infra/stockfighter"
)

// NewDispatcher builds the dispatcher matching the configured trading mode.
// LIVE additionally demands CONFIRM_LIVE_ORDERS=true so a copied config file
// cannot trade real money by accident.
func NewDispatcher(cfg *infra.Config, client *stockfighter.Client) (Dispatcher, error) {
	switch cfg.Trading.Mode {
	case infra.ModePaper:
		return NewPaperDispatcher(cfg.OrderGrace()), nil
	case infra.ModeLive:
		if os.Getenv("CONFIRM_LIVE_ORDERS") != "true" {
			return nil, fmt.Errorf("mode LIVE requires CONFIRM_LIVE_ORDERS=true in the environment")
		}
		return NewLiveDispatcher(client, cfg.OrderGrace()), nil
	default:
		return nil, fmt.Errorf("unknown trading mode %q", cfg.Trading.Mode)
	}
}
