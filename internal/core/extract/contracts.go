package extract

import (
	"context"
	"time"
)

// TextAcquirer is stage 1: card image -> raw text.
type TextAcquirer interface {
	Acquire(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Format     string // "png" | "jpeg"
	Method     string // "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}
