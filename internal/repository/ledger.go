package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cards-extractor/internal/entity"
)

var schema = map[string][]string{
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			input_dir   TEXT NOT NULL,
			output_file TEXT NOT NULL,
			status      TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT,
			processed   INTEGER NOT NULL DEFAULT 0,
			succeeded   INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS card_outcomes (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			file_name     TEXT NOT NULL,
			format        TEXT NOT NULL DEFAULT '',
			content_hash  TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL,
			error_kind    TEXT,
			error_message TEXT,
			ocr_text      TEXT,
			confidence    REAL,
			processed_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS card_outcomes_run_id ON card_outcomes (run_id)`,
	},
	DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS runs (
			id          UUID PRIMARY KEY,
			input_dir   TEXT NOT NULL,
			output_file TEXT NOT NULL,
			status      TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			finished_at TEXT,
			processed   INTEGER NOT NULL DEFAULT 0,
			succeeded   INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS card_outcomes (
			id            BIGSERIAL PRIMARY KEY,
			run_id        UUID NOT NULL,
			file_name     TEXT NOT NULL,
			format        TEXT NOT NULL DEFAULT '',
			content_hash  TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL,
			error_kind    TEXT,
			error_message TEXT,
			ocr_text      TEXT,
			confidence    REAL,
			processed_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS card_outcomes_run_id ON card_outcomes (run_id)`,
	},
}

// Ledger stores batch runs and per-card outcomes.
type Ledger struct {
	db  *DB
	log *slog.Logger
}

func NewLedger(db *DB, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{db: db, log: log}
}

// Migrate creates the ledger tables if they are missing.
func (l *Ledger) Migrate(ctx context.Context) error {
	for _, stmt := range schema[l.db.Dialect] {
		if err := l.db.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			l.log.Error("ledger migrate failed", "err", err)
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}
	return nil
}

func (l *Ledger) StartRun(ctx context.Context, run entity.Run) error {
	insert := l.db.Builder().Insert("runs").
		Columns("id", "input_dir", "output_file", "status", "started_at").
		Values(run.ID.String(), run.InputDir, run.OutputFile, run.Status, formatTime(run.StartedAt))
	if _, err := l.exec(ctx, insert); err != nil {
		l.log.Error("run start failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("insert run: %w", err)
	}
	l.log.Debug("run started", "run_id", run.ID)
	return nil
}

func (l *Ledger) FinishRun(ctx context.Context, run entity.Run) error {
	var finished sql.NullString
	if run.FinishedAt != nil {
		finished = sql.NullString{String: formatTime(*run.FinishedAt), Valid: true}
	}
	update := l.db.Builder().Update("runs").
		Set("status", run.Status).
		Set("finished_at", finished).
		Set("processed", run.Processed).
		Set("succeeded", run.Succeeded).
		Set("failed", run.Failed).
		Where(entsql.EQ("id", run.ID.String()))
	res, err := l.exec(ctx, update)
	if err != nil {
		l.log.Error("run finish failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run %s: %w", run.ID, sql.ErrNoRows)
	}
	l.log.Debug("run finished", "run_id", run.ID, "status", run.Status)
	return nil
}

func (l *Ledger) RecordCard(ctx context.Context, o entity.CardOutcome) error {
	var conf sql.NullFloat64
	if o.Confidence != nil {
		conf = sql.NullFloat64{Float64: float64(*o.Confidence), Valid: true}
	}
	insert := l.db.Builder().Insert("card_outcomes").
		Columns("run_id", "file_name", "format", "content_hash", "status",
			"error_kind", "error_message", "ocr_text", "confidence", "processed_at").
		Values(o.RunID.String(), o.FileName, o.Format, o.ContentHash, o.Status,
			nullString(o.ErrorKind), nullString(o.ErrorMessage), nullString(o.OCRText), conf,
			formatTime(o.ProcessedAt))
	if _, err := l.exec(ctx, insert); err != nil {
		l.log.Error("card outcome insert failed", "run_id", o.RunID, "file", o.FileName, "err", err)
		return fmt.Errorf("insert card outcome: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	b := l.db.Builder()
	query := b.Select("id", "input_dir", "output_file", "status", "started_at", "finished_at",
		"processed", "succeeded", "failed").
		From(b.Table("runs")).
		OrderBy(entsql.Desc("started_at")).
		Limit(limit)
	rows, err := l.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.Run
	for rows.Next() {
		var (
			r           entity.Run
			id, started string
			finished    sql.NullString
		)
		if err := rows.Scan(&id, &r.InputDir, &r.OutputFile, &r.Status, &started, &finished,
			&r.Processed, &r.Succeeded, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if finished.Valid {
			t, err := parseTime(finished.String)
			if err != nil {
				return nil, err
			}
			r.FinishedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CardsForRun lists the outcomes of one run in the order they were recorded.
func (l *Ledger) CardsForRun(ctx context.Context, runID uuid.UUID) ([]entity.CardOutcome, error) {
	b := l.db.Builder()
	query := b.Select("file_name", "format", "content_hash", "status", "error_kind", "error_message",
		"ocr_text", "confidence", "processed_at").
		From(b.Table("card_outcomes")).
		Where(entsql.EQ("run_id", runID.String())).
		OrderBy("id")
	rows, err := l.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query card outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.CardOutcome
	for rows.Next() {
		var (
			o               entity.CardOutcome
			kind, msg, text sql.NullString
			conf            sql.NullFloat64
			processed       string
		)
		if err := rows.Scan(&o.FileName, &o.Format, &o.ContentHash, &o.Status, &kind, &msg, &text, &conf, &processed); err != nil {
			return nil, fmt.Errorf("scan card outcome: %w", err)
		}
		o.RunID = runID
		o.ErrorKind = stringPtr(kind)
		o.ErrorMessage = stringPtr(msg)
		o.OCRText = stringPtr(text)
		if conf.Valid {
			c := float32(conf.Float64)
			o.Confidence = &c
		}
		if o.ProcessedAt, err = parseTime(processed); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (l *Ledger) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := l.db.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (l *Ledger) query(ctx context.Context, q entsql.Querier) (*entsql.Rows, error) {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := l.db.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// fixed width so TEXT ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
