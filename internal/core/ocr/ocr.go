package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // 6 treats the card as a single uniform block; good for sparse card layouts
	OEM int // 1 = LSTM; leave 0 to use default

	EnableTSVConfidence bool
}

type ExtractionResult struct {
	Text       string
	SourceType string // constants.IMAGE
	Method     string // "image-ocr"
	Format     string // decoded image format: "png" | "jpeg"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithRunner(cfg, execRunner{}, logger)
}

// NewExtractorWithRunner lets callers (and tests) swap the command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract verifies the image, then OCRs it. Any failure comes back as *common.ImageDecodeError.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting ocr extraction", "path", path, "ext", ext)

	if constants.MapExtToFormat(ext) != constants.IMAGE {
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return ExtractionResult{}, &common.ImageDecodeError{
			Path:  path,
			Stage: "decode",
			Cause: fmt.Errorf("unsupported extension: %q", ext),
		}
	}

	format, err := VerifyImage(path)
	if err != nil {
		e.logger.Warn("image verification failed", "path", path, "error", err)
		return ExtractionResult{SourceType: constants.IMAGE}, &common.ImageDecodeError{Path: path, Stage: "decode", Cause: err}
	}

	res, err := e.extractImage(ctx, path)
	res.Format = format
	res.Duration = time.Since(start)
	if err != nil {
		return res, &common.ImageDecodeError{Path: path, Stage: "ocr", Cause: err}
	}
	e.logger.Debug("ocr extraction ok",
		"path", path,
		"format", format,
		"bytes", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
