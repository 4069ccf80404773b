package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/cards-extractor/internal/app"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core/ocr"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	flag.Parse()

	logger := common.NewLogger(os.Stderr, slog.LevelInfo)
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runocr [-config file] <image>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if !ocr.Available(cfg.OCR.Tesseract) {
		logger.Error("tesseract not found", "bin", cfg.OCR.Tesseract)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res, err := app.OCRExtractor(cfg, logger).Extract(ctx, path)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed",
			"path", path, "kind", common.ClassifyCardError(err), "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"path", path,
		"format", res.Format,
		"confidence", res.Confidence,
		"bytes", len(res.Text),
		"duration_ms", dur.Milliseconds(),
	)
	fmt.Println(res.Text)
}
