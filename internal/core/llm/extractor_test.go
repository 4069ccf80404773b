package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
)

type scriptedCompleter struct {
	answers []string
	errs    []error
	reqs    []ChatRequest
}

func (s *scriptedCompleter) Complete(_ context.Context, req ChatRequest) (string, error) {
	i := len(s.reqs)
	s.reqs = append(s.reqs, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.answers) {
		return s.answers[i], nil
	}
	return "", errors.New("script exhausted")
}

func newTestExtractor(c Completer) *FieldExtractor {
	noWait := RetryPolicy{MaxAttempts: 3, Delay: time.Second, sleep: func(context.Context, time.Duration) error { return nil }}
	return NewFieldExtractor(c, noWait, DefaultSampling(), nil)
}

func TestExtractFieldTrimsAnswer(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"  Jane \n"}}
	got, err := newTestExtractor(c).ExtractField(context.Background(), "Jane Doe, Acme Corp", constants.FirstName)
	require.NoError(t, err)
	require.Equal(t, "Jane", got)

	require.Len(t, c.reqs, 1)
	req := c.reqs[0]
	require.Equal(t, SystemPrompt, req.System)
	require.Equal(t, 50, req.MaxTokens)
	require.InDelta(t, 0.5, req.Temperature, 0.0001)
	require.Contains(t, req.User, "Extract first name from the following text: Jane Doe, Acme Corp,")
	require.Contains(t, req.User, "just return 'NA'")
	require.Contains(t, req.User, "only pick the first one")
}

func TestExtractFieldKeepsSentinel(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"NA"}}
	got, err := newTestExtractor(c).ExtractField(context.Background(), "blurry", constants.Website)
	require.NoError(t, err)
	require.Equal(t, constants.NotAvailable, got)
}

func TestExtractFieldRetriesThenSucceeds(t *testing.T) {
	c := &scriptedCompleter{
		errs:    []error{errors.New("429 rate limited"), nil},
		answers: []string{"", "15551234567"},
	}
	got, err := newTestExtractor(c).ExtractField(context.Background(), "text", constants.Phone)
	require.NoError(t, err)
	require.Equal(t, "15551234567", got)
	require.Len(t, c.reqs, 2)
	require.Equal(t, c.reqs[0], c.reqs[1], "retries resubmit the same request")
}

func TestExtractFieldGivesUpAfterThreeCalls(t *testing.T) {
	boom := errors.New("connection reset")
	c := &scriptedCompleter{errs: []error{boom, boom, boom, boom}}

	_, err := newTestExtractor(c).ExtractField(context.Background(), "text", constants.Email)
	require.Len(t, c.reqs, 3)

	var fieldErr *common.FieldExtractionError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "email", fieldErr.Field)

	last, ok := common.LastRetryCause(err)
	require.True(t, ok)
	require.ErrorIs(t, last, boom)
	require.ErrorIs(t, err, boom)
	require.Equal(t, common.KindFieldExtraction, common.ClassifyCardError(err))
}

func TestBuildInstructionEmbedsFieldAndText(t *testing.T) {
	msg := BuildInstruction("ACME\nJane", constants.Company)
	require.True(t, strings.HasPrefix(msg, "Extract company from the following text: ACME\nJane,"))
}

func TestLimitedCompleterPassThrough(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"ok", "ok"}}
	require.Same(t, Completer(c), NewLimitedCompleter(nil, c))

	limited := NewLimitedCompleter(NewRateLimiter(1000), c)
	out, err := limited.Complete(context.Background(), ChatRequest{})
	require.NoError(t, err)
	require.Equal(t, "ok", out)

	require.Nil(t, NewRateLimiter(0))
}

func TestLimitedCompleterHonoursCancel(t *testing.T) {
	c := &scriptedCompleter{answers: []string{"ok"}}
	limited := NewLimitedCompleter(NewRateLimiter(0.001), c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := limited.Complete(ctx, ChatRequest{})
	require.Error(t, err)
	require.Empty(t, c.reqs)
}
