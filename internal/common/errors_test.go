package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyCardError(t *testing.T) {
	last := errors.New("503 service unavailable")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "decode", err: &ImageDecodeError{Path: "a.jpg", Stage: "decode", Cause: errors.New("bad header")}, want: KindImageDecode},
		{name: "wrapped decode", err: fmt.Errorf("card: %w", &ImageDecodeError{Stage: "ocr"}), want: KindImageDecode},
		{name: "field", err: &FieldExtractionError{Field: "phone", Cause: &RetryExhaustedError{Attempts: 3, Last: last}}, want: KindFieldExtraction},
		{name: "sink", err: &SinkWriteError{Cause: errors.New("disk full")}, want: KindSinkWrite},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "deadline", err: fmt.Errorf("x: %w", context.DeadlineExceeded), want: KindCanceled},
		{name: "other", err: errors.New("boom"), want: KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyCardError(tt.err))
		})
	}
}

func TestLastRetryCause(t *testing.T) {
	last := errors.New("429")
	err := &FieldExtractionError{Field: "email", Cause: &RetryExhaustedError{Attempts: 3, Last: last}}

	got, ok := LastRetryCause(err)
	require.True(t, ok)
	require.Same(t, last, got)
	require.ErrorIs(t, err, last)
	require.Contains(t, err.Error(), `extract field "email": gave up after 3 attempt(s): 429`)

	_, ok = LastRetryCause(errors.New("plain"))
	require.False(t, ok)
}

func TestErrorLogWritesOnlyErrors(t *testing.T) {
	var buf bytes.Buffer
	l := NewErrorLogger(&buf)
	l.Info("ignored")
	l.Warn("ignored too")
	l.Error("Error processing c.jpg: bad", "file", "c.jpg")

	out := buf.String()
	require.NotContains(t, out, "ignored")
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, "c.jpg")
}
