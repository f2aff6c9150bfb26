package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/romanlevin/stockfighter/pkg/quant"
)

func newTestStore(t *testing.T) *CheckpointStore {
	t.Helper()
	store, err := NewCheckpointStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCheckpointStore_SaveAndLoadLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := Checkpoint{
		RunID:          "run-1",
		SharesBought:   3500,
		Target:         903,
		ClientsCeiling: 2450,
		UpdatedAt:      time.UnixMilli(1000),
	}
	second := Checkpoint{
		RunID:          "run-1",
		SharesBought:   7200,
		Target:         858,
		ClientsCeiling: 2450,
		UpdatedAt:      time.UnixMilli(2000),
	}

	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Failed to save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Failed to save second: %v", err)
	}

	got, err := store.LoadLatest(ctx, "run-1")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got.SharesBought != 7200 {
		t.Errorf("SharesBought = %d, want 7200", got.SharesBought)
	}
	if got.Target != 858 {
		t.Errorf("Target = %d, want 858", got.Target)
	}
	if got.ClientsCeiling != 2450 {
		t.Errorf("ClientsCeiling = %d, want 2450", got.ClientsCeiling)
	}
	if !got.UpdatedAt.Equal(time.UnixMilli(2000)) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, time.UnixMilli(2000))
	}
}

func TestCheckpointStore_MissingRun(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadLatest(context.Background(), "no-such-run")
	if !errors.Is(err, ErrNoCheckpoint) {
		t.Fatalf("err = %v, want ErrNoCheckpoint", err)
	}
}

func TestCheckpointStore_RunsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, Checkpoint{RunID: "run-a", SharesBought: 100, Target: 900, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if err := store.Save(ctx, Checkpoint{RunID: "run-b", SharesBought: 999, Target: 800, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := store.LoadLatest(ctx, "run-a")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got.SharesBought != 100 {
		t.Errorf("SharesBought = %d, want 100", got.SharesBought)
	}
}

func TestCheckpointStore_History(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, bought := range []int64{1000, 2500, 4000} {
		cp := Checkpoint{
			RunID:        "run-1",
			SharesBought: quant.Shares(bought),
			Target:       903,
			UpdatedAt:    time.UnixMilli(int64(i) * 1000),
		}
		if err := store.Save(ctx, cp); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
	}

	hist, err := store.History(ctx, "run-1")
	if err != nil {
		t.Fatalf("Failed to load history: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("len(hist) = %d, want 3", len(hist))
	}
	if hist[0].SharesBought != 1000 || hist[2].SharesBought != 4000 {
		t.Errorf("history out of order: %v, %v", hist[0].SharesBought, hist[2].SharesBought)
	}
}
