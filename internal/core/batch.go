package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/entity"
)

// Summary is the aggregate outcome of one batch run.
type Summary struct {
	RunID     uuid.UUID
	Scanned   int // directory entries seen
	Matched   int // entries with an image extension
	Succeeded int
	Failed    int
	Failures  []CardResult
	Duration  time.Duration
}

// BatchOptions configures a BatchRunner.
type BatchOptions struct {
	InputDirectory string
	OutputFile     string
	Ledger         Ledger
	Console        io.Writer
	// Now is the clock used for the start/end timestamps.
	Now func() time.Time
}

// BatchRunner walks one input directory and feeds every card image to a CardProcessor.
type BatchRunner struct {
	opts      BatchOptions
	processor *CardProcessor
	sink      OutputSink
	logger    *slog.Logger
}

func NewBatchRunner(opts BatchOptions, processor *CardProcessor, sink OutputSink, logger *slog.Logger) *BatchRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BatchRunner{opts: opts, processor: processor, sink: sink, logger: logger}
}

// Run processes the directory once. Card failures are counted in the summary; only setup
// failures (unreadable directory, header write) and cancellation return an error.
func (b *BatchRunner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: uuid.New()}
	if strings.TrimSpace(b.opts.InputDirectory) == "" {
		return sum, common.NewAppError("CONFIG_ERROR", "input directory is required", common.ErrInvalidInput)
	}
	ctx = common.WithRunID(ctx, sum.RunID.String())
	start := b.opts.Now()
	_, _ = fmt.Fprintln(b.opts.Console, start.Format(time.TimeOnly))

	entries, err := os.ReadDir(b.opts.InputDirectory)
	if err != nil {
		return sum, fmt.Errorf("read input directory: %w", err)
	}
	if err := b.sink.WriteHeader(constants.AsStringSlice()); err != nil {
		return sum, &common.SinkWriteError{Cause: fmt.Errorf("write header: %w", err)}
	}

	run := entity.Run{
		ID:         sum.RunID,
		InputDir:   b.opts.InputDirectory,
		OutputFile: b.opts.OutputFile,
		Status:     string(constants.RunStatusRunning),
		StartedAt:  start.UTC(),
	}
	b.startRun(ctx, run)
	b.logger.Info("batch.start",
		"run_id", sum.RunID,
		"dir", b.opts.InputDirectory,
		"entries", len(entries),
	)

	progress := false
	var runErr error
	for _, e := range entries {
		sum.Scanned++
		if e.IsDir() || !constants.IsAllowedExt(filepath.Ext(e.Name())) {
			continue
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		sum.Matched++

		img := entity.NewCardImage(filepath.Join(b.opts.InputDirectory, e.Name()))
		res := b.processor.Process(ctx, img)
		if res.Status == constants.CardStatusCanceled {
			runErr = res.Err
			break
		}
		if res.Err != nil {
			sum.Failed++
			sum.Failures = append(sum.Failures, res)
			continue
		}
		sum.Succeeded++
		progress = true
		_, _ = fmt.Fprint(b.opts.Console, "- ")
	}

	end := b.opts.Now()
	sum.Duration = end.Sub(start)
	if progress {
		_, _ = fmt.Fprintln(b.opts.Console)
	}
	_, _ = fmt.Fprintln(b.opts.Console, end.Format(time.TimeOnly))

	finished := end.UTC()
	run.FinishedAt = &finished
	run.Processed = sum.Matched
	run.Succeeded = sum.Succeeded
	run.Failed = sum.Failed
	run.Status = string(constants.RunStatusFinished)
	if runErr != nil {
		run.Status = string(constants.RunStatusAborted)
	}
	b.finishRun(ctx, run)

	b.logger.Info("batch.done",
		"run_id", sum.RunID,
		"status", run.Status,
		"scanned", sum.Scanned,
		"matched", sum.Matched,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"elapsed_ms", sum.Duration.Milliseconds(),
	)
	if runErr != nil {
		return sum, fmt.Errorf("batch interrupted: %w", runErr)
	}
	_, _ = fmt.Fprintln(b.opts.Console, "The work is done.")
	return sum, nil
}

func (b *BatchRunner) startRun(ctx context.Context, run entity.Run) {
	if b.opts.Ledger == nil {
		return
	}
	if err := b.opts.Ledger.StartRun(ctx, run); err != nil {
		b.logger.Warn("ledger.start_run.failed", "run_id", run.ID, "error", err)
	}
}

func (b *BatchRunner) finishRun(ctx context.Context, run entity.Run) {
	if b.opts.Ledger == nil {
		return
	}
	if err := b.opts.Ledger.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		b.logger.Warn("ledger.finish_run.failed", "run_id", run.ID, "error", err)
	}
}

func parseRunID(ctx context.Context) (uuid.UUID, error) {
	return uuid.Parse(common.RunIDFromContext(ctx))
}
