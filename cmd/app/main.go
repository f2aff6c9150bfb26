package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/romanlevin/stockfighter/internal/app"
	"github.com/romanlevin/stockfighter/internal/domain"
	"github.com/romanlevin/stockfighter/internal/engine"
	"github.com/romanlevin/stockfighter/internal/event"
	"github.com/romanlevin/stockfighter/internal/execution"
	"github.com/romanlevin/stockfighter/internal/infra"
	"github.com/romanlevin/stockfighter/internal/infra/stockfighter"
	"github.com/romanlevin/stockfighter/internal/storage"
	"github.com/romanlevin/stockfighter/pkg/quant"
)

func main() {
	// Secrets live in .env during development; absence is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml")
	shares := flag.Int64("shares", 0, "override shares_to_buy from config")
	target := flag.String("target", "", "known client price ceiling, e.g. 24.50")
	resume := flag.String("resume", "", "resume a previous run by its run ID")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config
	if *shares > 0 {
		cfg.Trading.SharesToBuy = *shares
	}
	if cfg.Trading.SharesToBuy <= 0 {
		slog.Error("Nothing to buy: set trading.shares_to_buy or pass -shares")
		os.Exit(1)
	}

	infra.PrintBanner(cfg, cfg.Trading.SharesToBuy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := run(ctx, bootstrap, *target, *resume)

	report, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(report))

	if err != nil {
		slog.Error("Run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, bootstrap *app.Bootstrap, target, resume string) (event.Summary, error) {
	cfg := bootstrap.Config

	threshold, err := quant.ParseFactor(cfg.Trading.Threshold)
	if err != nil {
		return event.Summary{}, fmt.Errorf("bad threshold: %w", err)
	}
	raiseStep, err := quant.ParseFactor(cfg.Trading.RaiseStep)
	if err != nil {
		return event.Summary{}, fmt.Errorf("bad raise step: %w", err)
	}

	acq := domain.NewAcquisition(
		quant.Shares(cfg.Trading.SharesToBuy),
		threshold, raiseStep,
		cfg.QuietInterval(),
	)

	if target != "" {
		limit, err := quant.ParseCentsStr(target)
		if err != nil {
			return event.Summary{}, fmt.Errorf("bad target price: %w", err)
		}
		acq.SeedCeiling(limit, time.Now())
		slog.Info("Ceiling seeded from command line", slog.String("target", limit.String()))
	}

	runID := uuid.NewString()
	if resume != "" {
		runID = resume
		if err := restoreFromCheckpoint(ctx, bootstrap, acq, runID); err != nil {
			return event.Summary{}, err
		}
	}

	client := stockfighter.NewClient(cfg)
	slot := event.NewQuoteSlot()

	var fatal <-chan error
	switch cfg.Trading.QuoteSource {
	case infra.QuoteSourcePoll:
		poller := stockfighter.NewQuotePoller(client, slot, cfg.PollInterval())
		poller.Start(ctx)
		defer poller.Stop()
		slog.Info("Quote poller started", slog.Duration("interval", cfg.PollInterval()))
	default:
		worker := stockfighter.NewTickertapeWorker(cfg, slot)
		worker.Connect(ctx)
		defer worker.Disconnect()
		fatal = worker.Fatal()
		slog.Info("Tickertape stream started")
	}

	dispatcher, err := execution.NewDispatcher(cfg, client)
	if err != nil {
		return event.Summary{}, err
	}

	var status engine.StatusSource
	if cfg.GM.InstanceID != 0 {
		status = app.NewGMStatusSource(stockfighter.NewGMClient(cfg))
		slog.Info("GM status polling enabled", slog.Int64("instance", cfg.GM.InstanceID))
	}

	var checkpoints engine.CheckpointSaver
	if bootstrap.Checkpoints != nil {
		checkpoints = bootstrap.Checkpoints
	}

	runner := engine.NewRunner(engine.RunnerConfig{
		RunID:        runID,
		Acquisition:  acq,
		Slot:         slot,
		Dispatcher:   dispatcher,
		Status:       status,
		Checkpoints:  checkpoints,
		StreamFatal:  fatal,
		TickInterval: cfg.TickInterval(),
		OnProgress: func(p event.Progress) {
			slog.Info("Progress",
				slog.String("target", p.Target.String()),
				slog.String("ask", p.Ask.String()),
				slog.Int64("bought", int64(p.SharesBought)),
				slog.Int64("remaining", int64(p.Remaining)))
		},
	})

	summary, runErr := runner.Run(ctx)

	if paper, ok := dispatcher.(*execution.PaperDispatcher); ok {
		slog.Info("Simulated spend",
			slog.String("total", paper.TotalSpent().String()),
			slog.Int64("filled", int64(paper.TotalFilled())))
	}
	return summary, runErr
}

func restoreFromCheckpoint(ctx context.Context, bootstrap *app.Bootstrap, acq *domain.Acquisition, runID string) error {
	if bootstrap.Checkpoints == nil {
		return fmt.Errorf("-resume requires storage.checkpoints enabled")
	}
	cp, err := bootstrap.Checkpoints.LoadLatest(ctx, runID)
	if errors.Is(err, storage.ErrNoCheckpoint) {
		slog.Warn("No checkpoint found, starting fresh", slog.String("run_id", runID))
		return nil
	}
	if err != nil {
		return err
	}
	acq.Restore(cp.SharesBought, cp.Target, cp.ClientsCeiling, time.Now())
	slog.Info("Resumed from checkpoint",
		slog.String("run_id", runID),
		slog.Int64("bought", int64(cp.SharesBought)),
		slog.String("target", cp.Target.String()))
	return nil
}
