package execution

import (
	"testing"

	"github.com/romanlevin/stockfighter/internal/infra"
)

func TestNewDispatcher(t *testing.T) {
	cfg := &infra.Config{}
	cfg.Trading.OrderGraceMS = 500

	t.Run("Paper Mode", func(t *testing.T) {
		cfg.Trading.Mode = infra.ModePaper
		d, err := NewDispatcher(cfg, nil)
		if err != nil {
			t.Fatalf("NewDispatcher: %v", err)
		}
		if _, ok := d.(*PaperDispatcher); !ok {
			t.Errorf("got %T, want *PaperDispatcher", d)
		}
	})

	t.Run("Live Mode Requires Confirmation", func(t *testing.T) {
		cfg.Trading.Mode = infra.ModeLive
		if _, err := NewDispatcher(cfg, nil); err == nil {
			t.Fatal("want error without CONFIRM_LIVE_ORDERS")
		}
	})

	t.Run("Live Mode Confirmed", func(t *testing.T) {
		cfg.Trading.Mode = infra.ModeLive
		t.Setenv("CONFIRM_LIVE_ORDERS", "true")
		d, err := NewDispatcher(cfg, nil)
		if err != nil {
			t.Fatalf("NewDispatcher: %v", err)
		}
		if _, ok := d.(*LiveDispatcher); !ok {
			t.Errorf("got %T, want *LiveDispatcher", d)
		}
	})

	t.Run("Unknown Mode Rejected", func(t *testing.T) {
		cfg.Trading.Mode = "YOLO"
		if _, err := NewDispatcher(cfg, nil); err == nil {
			t.Fatal("want error for unknown mode")
		}
	})
}
