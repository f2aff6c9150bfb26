package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/romanlevin/stockfighter/internal/engine"
	"github.com/romanlevin/stockfighter/internal/infra"
	"github.com/romanlevin/stockfighter/internal/infra/stockfighter"
	"github.com/romanlevin/stockfighter/internal/storage"
)

// Bootstrap orchestrates startup: config, logging, workspace layout, the
// singleton lock, and the checkpoint database.
type Bootstrap struct {
	Config      *infra.Config
	Checkpoints *storage.CheckpointStore

	unlock func()
}

// NewBootstrap creates an empty Bootstrap.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization. An empty configPath falls
// back to the standard lookup locations.
func (b *Bootstrap) Initialize(configPath string) error {
	if configPath == "" {
		configPath = infra.ResolveConfigPath()
	}

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// Data is isolated per trading mode so a paper experiment can never
	// touch the live checkpoint history.
	mode := strings.ToLower(cfg.Trading.Mode)
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data", mode)
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	if cfg.Storage.Checkpoints {
		dbPath := filepath.Join(dataDir, "checkpoints.db")
		store, err := storage.NewCheckpointStore(dbPath)
		if err != nil {
			return err
		}
		b.Checkpoints = store
		slog.Info("Checkpoint store ready", slog.String("path", dbPath), slog.String("mode", mode))
	}

	return nil
}

// Close releases the singleton lock and the checkpoint database.
func (b *Bootstrap) Close() {
	if b.Checkpoints != nil {
		if err := b.Checkpoints.Close(); err != nil {
			slog.Warn("Failed to close checkpoint store", slog.Any("error", err))
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}

// GMStatusSource adapts the game master client to the engine's status query.
type GMStatusSource struct {
	gm *stockfighter.GMClient
}

// NewGMStatusSource wraps a GM client.
func NewGMStatusSource(gm *stockfighter.GMClient) *GMStatusSource {
	return &GMStatusSource{gm: gm}
}

// Status implements engine.StatusSource.
func (s *GMStatusSource) Status(ctx context.Context) (engine.RunStatus, error) {
	inst, err := s.gm.InstanceStatus(ctx)
	if err != nil {
		return engine.RunStatus{}, err
	}
	st := engine.RunStatus{Aborted: inst.Aborted()}
	if ceiling, ok := inst.ClientsCeiling(); ok {
		st.HasCeiling = true
		st.ClientsCeiling = ceiling
	}
	return st, nil
}
