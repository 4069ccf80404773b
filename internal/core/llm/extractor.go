package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
)

// Sampling holds the per-call generation settings.
type Sampling struct {
	MaxTokens   int
	Temperature float32
}

// DefaultSampling is a short answer with a little randomness.
func DefaultSampling() Sampling {
	return Sampling{MaxTokens: 50, Temperature: 0.5}
}

// FieldExtractor queries the model once per field and retries failed calls.
type FieldExtractor struct {
	completer Completer
	policy    RetryPolicy
	sampling  Sampling
	logger    *slog.Logger
}

var _ FieldAsker = (*FieldExtractor)(nil)

func NewFieldExtractor(c Completer, policy RetryPolicy, sampling Sampling, logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if sampling.MaxTokens <= 0 {
		sampling.MaxTokens = DefaultSampling().MaxTokens
	}
	return &FieldExtractor{completer: c, policy: policy, sampling: sampling, logger: logger}
}

// ExtractField returns the trimmed model answer for one field, or *common.FieldExtractionError
// once every attempt failed.
func (x *FieldExtractor) ExtractField(ctx context.Context, text string, field constants.FieldName) (string, error) {
	rid := uuid.New().String()
	start := time.Now()
	req := ChatRequest{
		System:      SystemPrompt,
		User:        BuildInstruction(text, field),
		MaxTokens:   x.sampling.MaxTokens,
		Temperature: x.sampling.Temperature,
	}

	var answer string
	err := x.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		out, err := x.completer.Complete(ctx, req)
		if err != nil {
			x.logger.Warn("llm.ask.error",
				"req_id", rid,
				"card", common.CardFromContext(ctx),
				"field", string(field),
				"attempt", attempt,
				"max_attempts", x.policy.MaxAttempts,
				"error", err,
			)
			return err
		}
		answer = out
		return nil
	})
	if err != nil {
		x.logger.Error("llm.ask.exhausted",
			"req_id", rid,
			"card", common.CardFromContext(ctx),
			"field", string(field),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &common.FieldExtractionError{Field: string(field), Cause: err}
	}

	value := strings.TrimSpace(answer)
	x.logger.Debug("llm.ask.ok",
		"req_id", rid,
		"field", string(field),
		"value_len", len(value),
		"not_available", value == constants.NotAvailable,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return value, nil
}
