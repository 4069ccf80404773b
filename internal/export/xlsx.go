package export

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/entity"
)

// CardsSheet is the worksheet card rows go to.
const CardsSheet = "Cards"

// XLSXSink keeps the workbook open and saves it after every write, so a WRITTEN card is on disk.
type XLSXSink struct {
	mu      sync.Mutex
	path    string
	f       *excelize.File
	nextRow int
	logger  *slog.Logger
}

func NewXLSXSink(path, mode string, logger *slog.Logger) (*XLSXSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		f   *excelize.File
		err error
	)
	_, statErr := os.Stat(path)
	switch {
	case mode != common.OutputModeOverwrite && statErr == nil:
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open xlsx output: %w", err)
		}
	case statErr == nil || errors.Is(statErr, fs.ErrNotExist):
		f = excelize.NewFile()
	default:
		return nil, fmt.Errorf("stat xlsx output: %w", statErr)
	}

	if index, _ := f.GetSheetIndex(CardsSheet); index == -1 {
		if _, err := f.NewSheet(CardsSheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("xlsx new sheet: %w", err)
		}
		// a fresh workbook comes with an empty default sheet
		if def := f.GetSheetName(0); def != "" && def != CardsSheet {
			if rows, _ := f.GetRows(def); len(rows) == 0 {
				_ = f.DeleteSheet(def)
			}
		}
	}
	activeIndex, _ := f.GetSheetIndex(CardsSheet)
	f.SetActiveSheet(activeIndex)

	rows, err := f.GetRows(CardsSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx read rows: %w", err)
	}
	logger.Debug("export.xlsx.open", "path", path, "mode", mode, "existing_rows", len(rows))
	return &XLSXSink{path: path, f: f, nextRow: len(rows) + 1, logger: logger}, nil
}

// WriteHeader writes header only into an empty sheet.
func (s *XLSXSink) WriteHeader(header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextRow > 1 {
		return nil
	}
	if err := s.writeRow(header); err != nil {
		return err
	}
	for i := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = s.f.SetColWidth(CardsSheet, col, col, 20)
	}
	return s.save()
}

func (s *XLSXSink) Append(record entity.CardRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	if err := s.writeRow(record.Values()); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	s.logger.Debug("export.xlsx.append", "row", s.nextRow-1, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func (s *XLSXSink) writeRow(values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.nextRow)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := s.f.SetSheetRow(CardsSheet, cell, &row); err != nil {
		return fmt.Errorf("xlsx set row %d: %w", s.nextRow, err)
	}
	s.nextRow++
	return nil
}

func (s *XLSXSink) save() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func (s *XLSXSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
