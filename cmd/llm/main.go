package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/app"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	flag.Parse()

	logger := common.NewLogger(os.Stderr, slog.LevelInfo)
	slog.SetDefault(logger)

	if flag.NArg() < 2 {
		logger.Error("usage: llm [-config file] <text-file> <field> [times]")
		os.Exit(2)
	}
	field, ok := constants.Canonicalize(flag.Arg(1))
	if !ok {
		logger.Error("unknown field", "arg", flag.Arg(1), "fields", constants.AsStringSlice())
		os.Exit(2)
	}
	times := 1
	if flag.NArg() >= 3 {
		if n, err := strconv.Atoi(flag.Arg(2)); err == nil && n > 0 {
			times = n
		}
	}

	text, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Error("read text file", "path", flag.Arg(0), "error", err)
		os.Exit(1)
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	extractor := app.FieldExtractor(cfg, logger)

	// the same question N times shows how stable the answer is
	for i := 1; i <= times; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		start := time.Now()
		v, err := extractor.ExtractField(ctx, string(text), field)
		cancel()
		if err != nil {
			logger.Error("llm.run.error", "iter", i, "field", string(field), "err", err)
			continue
		}
		if field.IsPhoneLike() {
			logger.Info("llm.run.normalized", "iter", i, "raw", v, "normalized", core.NormalizePhoneLike(v))
		}
		logger.Info("llm.run.ok", "iter", i, "elapsed_ms", time.Since(start).Milliseconds())
		fmt.Printf("%d\t%s\n", i, v)
	}
}
