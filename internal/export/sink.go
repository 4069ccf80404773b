package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core"
)

// Open returns the sink for path, picked by extension: .xlsx gets a workbook, anything else CSV.
// mode is common.OutputModeAppend or common.OutputModeOverwrite.
func Open(path, mode string, logger *slog.Logger) (core.OutputSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(path) == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "output file is required", common.ErrInvalidInput)
	}
	switch mode {
	case "", common.OutputModeAppend, common.OutputModeOverwrite:
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown output mode %q", mode), common.ErrInvalidInput)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		s, err := NewXLSXSink(path, mode, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewCSVSink(path, mode, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}
