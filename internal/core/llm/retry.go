package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/joseph-ayodele/cards-extractor/internal/common"
)

// RetryPolicy is a bounded fixed-delay retry: MaxAttempts calls in total, Delay between them,
// no distinction between error kinds.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is 3 attempts, 1s apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Second}
}

// Do calls op until it succeeds or the attempt cap is reached. On exhaustion it returns
// *common.RetryExhaustedError carrying the last cause. A context cancelled during the wait ends
// the loop early.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		last = op(ctx, attempt)
		if last == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return &common.RetryExhaustedError{
				Attempts: attempt,
				Last:     fmt.Errorf("%w (last error: %v)", err, last),
			}
		}
	}
	return &common.RetryExhaustedError{Attempts: maxAttempts, Last: last}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
