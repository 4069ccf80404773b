package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/cards-extractor/internal/core/ocr"
)

// OCRAdapter exposes the tesseract extractor as a TextAcquirer.
type OCRAdapter struct {
	extractor *ocr.Extractor
	logger    *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		extractor: e,
		logger:    l,
	}
}

// Acquire returns the OCR text of one card. Errors are *common.ImageDecodeError and are not retried.
func (a *OCRAdapter) Acquire(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, path)
	if err != nil {
		return TextExtractionResult{}, err
	}
	if len(r.Warnings) > 0 {
		a.logger.Debug("ocr warnings", "path", path, "warnings", r.Warnings)
	}
	return TextExtractionResult{
		Text:       r.Text,
		Format:     r.Format,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, nil
}
