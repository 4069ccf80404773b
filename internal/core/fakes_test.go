package core

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/core/extract"
	"github.com/joseph-ayodele/cards-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/cards-extractor/internal/entity"
)

// tesseractStub answers every OCR call with the same text and remembers which files it saw.
type tesseractStub struct {
	text string
	seen []string
}

func (s *tesseractStub) Run(_ context.Context, _ string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	s.seen = append(s.seen, filepath.Base(args[0]))
	return []byte(s.text), nil, nil
}

func newAcquirer(stub *tesseractStub) extract.TextAcquirer {
	return extract.NewOCRAdapter(ocr.NewExtractorWithRunner(ocr.Config{}, stub, nil), nil)
}

// scriptedAsker answers from a per-field table; unknown fields get "NA".
type scriptedAsker struct {
	answers map[constants.FieldName]string
	failOn  constants.FieldName
	err     error
	calls   []constants.FieldName
}

func (a *scriptedAsker) ExtractField(_ context.Context, _ string, f constants.FieldName) (string, error) {
	a.calls = append(a.calls, f)
	if f == a.failOn && a.err != nil {
		return "", a.err
	}
	if v, ok := a.answers[f]; ok {
		return v, nil
	}
	return constants.NotAvailable, nil
}

// cancelingAsker cancels the run on its first call, like a SIGINT arriving mid-card.
type cancelingAsker struct {
	cancel context.CancelFunc
	calls  int
}

func (a *cancelingAsker) ExtractField(context.Context, string, constants.FieldName) (string, error) {
	a.calls++
	a.cancel()
	return "Jane", nil
}

type memorySink struct {
	mu        sync.Mutex
	header    []string
	headers   int
	rows      [][]string
	appendErr error
}

func (m *memorySink) WriteHeader(h []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers++
	m.header = append([]string(nil), h...)
	return nil
}

func (m *memorySink) Append(r entity.CardRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.rows = append(m.rows, r.Values())
	return nil
}

func (m *memorySink) Close() error { return nil }

type memoryLedger struct {
	runs     []entity.Run
	finished []entity.Run
	cards    []entity.CardOutcome
}

func (l *memoryLedger) StartRun(_ context.Context, r entity.Run) error {
	l.runs = append(l.runs, r)
	return nil
}

func (l *memoryLedger) RecordCard(_ context.Context, o entity.CardOutcome) error {
	l.cards = append(l.cards, o)
	return nil
}

func (l *memoryLedger) FinishRun(_ context.Context, r entity.Run) error {
	l.finished = append(l.finished, r)
	return nil
}

var errFailingLedger = errors.New("ledger down")

type failingLedger struct{}

func (failingLedger) StartRun(context.Context, entity.Run) error           { return errFailingLedger }
func (failingLedger) RecordCard(context.Context, entity.CardOutcome) error { return errFailingLedger }
func (failingLedger) FinishRun(context.Context, entity.Run) error          { return errFailingLedger }

func cardImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for x := 0; x < 16; x++ {
		img.Set(x, 3, color.Black)
	}
	return img
}

func writeCard(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if ext := filepath.Ext(name); ext == ".png" || ext == ".PNG" {
		require.NoError(t, png.Encode(&buf, cardImage()))
	} else {
		require.NoError(t, jpeg.Encode(&buf, cardImage(), nil))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func janeAnswers() map[constants.FieldName]string {
	return map[constants.FieldName]string{
		constants.FirstName: "Jane",
		constants.LastName:  "Doe",
		constants.Company:   "Acme Corp",
		constants.Phone:     "15551234567",
	}
}

// writeHugePNG writes a PNG whose IHDR claims w x h RGBA pixels with no image data behind it.
func writeHugePNG(t *testing.T, dir, name string, w, h uint32) string {
	t.Helper()
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8], ihdr[9] = 8, 6

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	writeChunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		buf.WriteString(typ)
		buf.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
	}
	writeChunk("IHDR", ihdr)
	writeChunk("IDAT", []byte{0x78, 0x9c, 0x03, 0x00})
	writeChunk("IEND", nil)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}
