package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run is one batch invocation as stored in the ledger.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	InputDir   string     `json:"input_dir"`
	OutputFile string     `json:"output_file"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Processed  int        `json:"processed"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
}

// CardOutcome is the ledger row for one card in a run.
type CardOutcome struct {
	RunID        uuid.UUID `json:"run_id"`
	FileName     string    `json:"file_name"`
	Format       string    `json:"format"`
	ContentHash  string    `json:"content_hash,omitempty"`
	Status       string    `json:"status"`
	ErrorKind    *string   `json:"error_kind,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	OCRText      *string   `json:"ocr_text,omitempty"`
	Confidence   *float32  `json:"confidence,omitempty"`
	ProcessedAt  time.Time `json:"processed_at"`
}
