// Package app builds the pipeline components from a loaded common.Config.
package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core/extract"
	"github.com/joseph-ayodele/cards-extractor/internal/core/llm"
	"github.com/joseph-ayodele/cards-extractor/internal/core/llm/openai"
	"github.com/joseph-ayodele/cards-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/cards-extractor/internal/repository"
)

func OCRExtractor(cfg *common.Config, logger *slog.Logger) *ocr.Extractor {
	return ocr.NewExtractor(ocrConfig(cfg), logger)
}

func ocrConfig(cfg *common.Config) ocr.Config {
	return ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.Lang,
		TessdataDir:         cfg.OCR.TessdataDir,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		EnableTSVConfidence: cfg.OCR.TSVConfidence,
	}
}

func TextAcquirer(cfg *common.Config, logger *slog.Logger) extract.TextAcquirer {
	return extract.NewOCRAdapter(OCRExtractor(cfg, logger), logger)
}

// Completer is the OpenAI client, rate limited when LLM.RatePerSecond > 0.
func Completer(cfg *common.Config, logger *slog.Logger) llm.Completer {
	client := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)
	return llm.NewLimitedCompleter(llm.NewRateLimiter(cfg.LLM.RatePerSecond), client)
}

func FieldExtractor(cfg *common.Config, logger *slog.Logger) *llm.FieldExtractor {
	return NewFieldExtractor(cfg, Completer(cfg, logger), logger)
}

// NewFieldExtractor applies the retry and sampling settings of cfg to c.
func NewFieldExtractor(cfg *common.Config, c llm.Completer, logger *slog.Logger) *llm.FieldExtractor {
	return llm.NewFieldExtractor(c,
		llm.RetryPolicy{MaxAttempts: cfg.LLM.MaxAttempts, Delay: cfg.LLM.RetryDelay},
		llm.Sampling{MaxTokens: cfg.LLM.MaxTokens, Temperature: cfg.LLM.Temperature},
		logger,
	)
}

// Ledger opens and migrates the run ledger. Both returns are nil when no DSN is configured.
func Ledger(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.Ledger, *repository.DB, error) {
	if cfg.Ledger.DSN == "" {
		return nil, nil, nil
	}
	db, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Ledger.DSN,
		MaxConns:    4,
		DialTimeout: cfg.Ledger.DialTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	l := repository.NewLedger(db, logger)
	if err := l.Migrate(ctx); err != nil {
		db.Close(logger)
		return nil, nil, err
	}
	return l, db, nil
}
