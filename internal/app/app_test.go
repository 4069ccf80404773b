package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core/llm"
)

func TestLedgerDisabledWithoutDSN(t *testing.T) {
	l, db, err := Ledger(context.Background(), common.DefaultConfig(), nil)
	require.NoError(t, err)
	require.Nil(t, l)
	require.Nil(t, db)
}

func TestLedgerSQLite(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Ledger.DSN = filepath.Join(t.TempDir(), "ledger.db")

	l, db, err := Ledger(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, l)
	defer db.Close(nil)

	runs, err := l.RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestNewFieldExtractorUsesConfig(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.LLM.MaxAttempts = 2
	cfg.LLM.RetryDelay = time.Millisecond
	cfg.LLM.MaxTokens = 20

	calls := 0
	var seen llm.ChatRequest
	c := llm.CompleterFunc(func(_ context.Context, req llm.ChatRequest) (string, error) {
		calls++
		seen = req
		return "", context.DeadlineExceeded
	})

	_, err := NewFieldExtractor(cfg, c, nil).ExtractField(context.Background(), "text", constants.Country)
	require.Error(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, 20, seen.MaxTokens)
}

func TestOCRConfigCarriesTSVConfidence(t *testing.T) {
	cfg := common.DefaultConfig()
	require.False(t, ocrConfig(cfg).EnableTSVConfidence)

	cfg.OCR.TSVConfidence = true
	cfg.OCR.PSM = 11
	oc := ocrConfig(cfg)
	require.True(t, oc.EnableTSVConfidence)
	require.Equal(t, 11, oc.PSM)
	require.Equal(t, "eng", oc.TesseractLang)
}
