package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core/extract"
	"github.com/joseph-ayodele/cards-extractor/internal/core/llm"
	"github.com/joseph-ayodele/cards-extractor/internal/entity"
)

// OutputSink is the append-only tabular output. Columns follow constants.Fields().
type OutputSink interface {
	// WriteHeader writes the header row unless the sink already holds one.
	WriteHeader(header []string) error
	Append(record entity.CardRecord) error
	Close() error
}

// Ledger records runs and per-card outcomes. Optional.
type Ledger interface {
	StartRun(ctx context.Context, run entity.Run) error
	RecordCard(ctx context.Context, outcome entity.CardOutcome) error
	FinishRun(ctx context.Context, run entity.Run) error
}

// CardResult is what happened to one card.
type CardResult struct {
	Image      entity.CardImage
	Status     constants.CardStatus
	Record     entity.CardRecord
	Confidence float32
	Duration   time.Duration
	Err        error
}

// ProcessorOptions holds the optional collaborators of a CardProcessor.
type ProcessorOptions struct {
	Normalizer RecordNormalizer
	Ledger     Ledger
	// ErrorLog receives one error record per failed card.
	ErrorLog *slog.Logger
	// Console gets the operator-facing failure lines.
	Console io.Writer
	// Validate checks the serialized record before it is appended. Defaults to llm.ValidateCardJSON.
	Validate func([]byte) error
}

// CardProcessor turns one image into one written row, or into one reported failure.
type CardProcessor struct {
	text       extract.TextAcquirer
	fields     llm.FieldAsker
	sink       OutputSink
	normalizer RecordNormalizer
	ledger     Ledger
	errLog     *slog.Logger
	console    io.Writer
	validate   func([]byte) error
	logger     *slog.Logger
}

func NewCardProcessor(text extract.TextAcquirer, fields llm.FieldAsker, sink OutputSink, opts ProcessorOptions, logger *slog.Logger) *CardProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ErrorLog == nil {
		opts.ErrorLog = common.NewErrorLogger(io.Discard)
	}
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	if opts.Validate == nil {
		opts.Validate = llm.ValidateCardJSON
	}
	return &CardProcessor{
		text:       text,
		fields:     fields,
		sink:       sink,
		normalizer: opts.Normalizer,
		ledger:     opts.Ledger,
		errLog:     opts.ErrorLog,
		console:    opts.Console,
		validate:   opts.Validate,
		logger:     logger,
	}
}

// Process runs one card through START → TEXT_ACQUIRED → FIELDS_EXTRACTED → NORMALIZED → WRITTEN.
// Any failure ends in FAILED; it is reported here and returned in the result, never as a panic
// or a partial row. A card cut short by context cancellation ends in CANCELED and is not reported.
func (p *CardProcessor) Process(ctx context.Context, img entity.CardImage) CardResult {
	start := time.Now()
	ctx = common.WithCard(ctx, img.Name)
	res := CardResult{Image: img, Status: constants.CardStatusStart}

	text, err := p.text.Acquire(ctx, img.Path)
	if err != nil {
		return p.fail(ctx, res, start, "", err)
	}
	res.Status = constants.CardStatusTextAcquired
	res.Confidence = text.Confidence
	p.logger.Debug("card.ocr.ok",
		"run_id", common.RunIDFromContext(ctx),
		"file", img.Name,
		"chars", len(text.Text),
		"confidence", text.Confidence,
		"elapsed_ms", text.Duration.Milliseconds(),
	)

	values := make(map[constants.FieldName]string, constants.FieldCount())
	for _, f := range constants.Fields() {
		if err := ctx.Err(); err != nil {
			return p.fail(ctx, res, start, text.Text, err)
		}
		v, err := p.fields.ExtractField(ctx, text.Text, f)
		if err != nil {
			return p.fail(ctx, res, start, text.Text, err)
		}
		values[f] = v
	}
	res.Status = constants.CardStatusFieldsExtracted

	record, err := entity.NewCardRecord(p.normalizer.Normalize(values))
	if err != nil {
		return p.fail(ctx, res, start, text.Text, err)
	}
	res.Status = constants.CardStatusNormalized

	if err := p.write(record); err != nil {
		return p.fail(ctx, res, start, text.Text, err)
	}
	res.Status = constants.CardStatusWritten
	res.Record = record
	res.Duration = time.Since(start)

	p.logger.Info("card.written",
		"run_id", common.RunIDFromContext(ctx),
		"file", img.Name,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	p.recordOutcome(ctx, res, text.Text)
	return res
}

func (p *CardProcessor) write(record entity.CardRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return &common.SinkWriteError{Cause: fmt.Errorf("encode record: %w", err)}
	}
	if err := p.validate(b); err != nil {
		return &common.SinkWriteError{Cause: err}
	}
	if err := p.sink.Append(record); err != nil {
		return &common.SinkWriteError{Cause: err}
	}
	return nil
}

func (p *CardProcessor) fail(ctx context.Context, res CardResult, start time.Time, ocrText string, err error) CardResult {
	kind := common.ClassifyCardError(err)
	res.Err = err
	res.Duration = time.Since(start)
	failedAt := res.Status

	// an interrupted run says nothing about the card itself
	if kind == common.KindCanceled {
		res.Status = constants.CardStatusCanceled
		p.logger.Info("card.canceled",
			"run_id", common.RunIDFromContext(ctx),
			"file", res.Image.Name,
			"stage", string(failedAt),
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		p.recordOutcome(ctx, res, ocrText)
		return res
	}

	res.Status = constants.CardStatusFailed
	p.logger.Warn("card.failed",
		"run_id", common.RunIDFromContext(ctx),
		"file", res.Image.Name,
		"stage", string(failedAt),
		"kind", kind,
		"error", err,
		"elapsed_ms", res.Duration.Milliseconds(),
	)

	msg := fmt.Sprintf("Error processing %s: %v", res.Image.Name, err)
	p.errLog.Error(msg, "file", res.Image.Name, "kind", kind)
	_, _ = fmt.Fprintln(p.console, msg)
	if last, ok := common.LastRetryCause(err); ok {
		_, _ = fmt.Fprintln(p.console, "Cause of the RetryError:", last)
	}

	p.recordOutcome(ctx, res, ocrText)
	return res
}

func (p *CardProcessor) recordOutcome(ctx context.Context, res CardResult, ocrText string) {
	if p.ledger == nil {
		return
	}
	out := entity.CardOutcome{
		FileName:    res.Image.Name,
		Format:      res.Image.Format,
		ContentHash: fileHash(res.Image.Path),
		Status:      string(res.Status),
		ProcessedAt: time.Now().UTC(),
	}
	if ocrText != "" {
		out.OCRText = &ocrText
	}
	if res.Confidence > 0 {
		conf := res.Confidence
		out.Confidence = &conf
	}
	if res.Err != nil {
		kind := common.ClassifyCardError(res.Err)
		msg := res.Err.Error()
		out.ErrorKind = &kind
		out.ErrorMessage = &msg
	}
	if runID, err := parseRunID(ctx); err == nil {
		out.RunID = runID
	}

	// ledger errors never change the card outcome
	if err := p.ledger.RecordCard(context.WithoutCancel(ctx), out); err != nil {
		p.logger.Warn("ledger.record_card.failed", "file", res.Image.Name, "error", err)
	}
}

func fileHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}
