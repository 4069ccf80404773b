package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/cards-extractor/internal/app"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core"
	"github.com/joseph-ayodele/cards-extractor/internal/export"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		dir        = flag.String("dir", "", "directory with card images (overrides CARDS_INPUT_DIR)")
		out        = flag.String("out", "", "output .csv or .xlsx file (overrides CARDS_OUTPUT_FILE)")
		ledgerDSN  = flag.String("ledger", "", "ledger DSN: sqlite path or postgres:// URL (overrides LEDGER_DSN)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := common.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Cards.InputDirectory = *dir
	}
	if *out != "" {
		cfg.Cards.OutputFile = *out
	}
	if *ledgerDSN != "" {
		cfg.Ledger.DSN = *ledgerDSN
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("batch failed", "error", err)
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	errLog, err := common.OpenErrorLog(cfg.Cards.ErrorLog)
	if err != nil {
		return err
	}
	defer func() { _ = errLog.Close() }()

	sink, err := export.Open(cfg.Cards.OutputFile, cfg.Cards.OutputMode, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			logger.Error("close output", "error", cerr)
		}
	}()

	ledger, db, err := app.Ledger(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	if db != nil {
		defer db.Close(logger)
	}

	opts := core.ProcessorOptions{
		Normalizer: core.RecordNormalizer{PreserveSentinel: cfg.Cards.PreserveSentinel},
		ErrorLog:   errLog.Logger,
		Console:    os.Stdout,
	}
	batch := core.BatchOptions{
		InputDirectory: cfg.Cards.InputDirectory,
		OutputFile:     cfg.Cards.OutputFile,
		Console:        os.Stdout,
	}
	// a typed nil *Ledger must not end up inside the interface
	if ledger != nil {
		opts.Ledger = ledger
		batch.Ledger = ledger
	}

	processor := core.NewCardProcessor(
		app.TextAcquirer(cfg, logger),
		app.FieldExtractor(cfg, logger),
		sink,
		opts,
		logger,
	)
	sum, err := core.NewBatchRunner(batch, processor, sink, logger).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("batch summary",
		"run_id", sum.RunID,
		"matched", sum.Matched,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"elapsed_ms", sum.Duration.Milliseconds(),
	)
	return nil
}
