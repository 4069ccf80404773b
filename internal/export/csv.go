package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/entity"
)

// CSVSink appends card rows to a CSV file. Each row is flushed before Append returns.
type CSVSink struct {
	mu     sync.Mutex
	path   string
	f      *os.File
	w      *csv.Writer
	empty  bool
	logger *slog.Logger
}

func NewCSVSink(path, mode string, logger *slog.Logger) (*CSVSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if mode == common.OutputModeOverwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv output: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat csv output: %w", err)
	}
	logger.Debug("export.csv.open", "path", path, "mode", mode, "size", st.Size())
	return &CSVSink{
		path:   path,
		f:      f,
		w:      csv.NewWriter(f),
		empty:  st.Size() == 0,
		logger: logger,
	}, nil
}

// WriteHeader writes header only into an empty file.
func (s *CSVSink) WriteHeader(header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.empty {
		s.logger.Debug("export.csv.header_skipped", "path", s.path)
		return nil
	}
	if err := s.writeRow(header); err != nil {
		return err
	}
	s.empty = false
	return nil
}

func (s *CSVSink) Append(record entity.CardRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeRow(record.Values()); err != nil {
		return err
	}
	s.empty = false
	return nil
}

func (s *CSVSink) writeRow(row []string) error {
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	werr := s.w.Error()
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close csv output: %w", err)
	}
	return werr
}
