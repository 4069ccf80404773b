package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cards-extractor/internal/common"
)

type sleepRecorder struct {
	waits []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

func TestRetryPolicyStopsOnFirstSuccess(t *testing.T) {
	for _, succeedOn := range []int{1, 2, 3} {
		rec := &sleepRecorder{}
		p := RetryPolicy{MaxAttempts: 3, Delay: time.Second, sleep: rec.sleep}

		calls := 0
		err := p.Do(context.Background(), func(context.Context, int) error {
			calls++
			if calls < succeedOn {
				return errors.New("rate limited")
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, succeedOn, calls)
		require.Len(t, rec.waits, succeedOn-1)
		for _, w := range rec.waits {
			require.Equal(t, time.Second, w)
		}
	}
}

func TestRetryPolicyExhaustsAfterMaxAttempts(t *testing.T) {
	rec := &sleepRecorder{}
	p := RetryPolicy{MaxAttempts: 3, Delay: time.Second, sleep: rec.sleep}

	calls := 0
	err := p.Do(context.Background(), func(_ context.Context, attempt int) error {
		calls++
		require.Equal(t, calls, attempt)
		return errors.New("boom " + string(rune('0'+attempt)))
	})

	require.Equal(t, 3, calls)
	require.Len(t, rec.waits, 2)

	var re *common.RetryExhaustedError
	require.ErrorAs(t, err, &re)
	require.Equal(t, 3, re.Attempts)
	require.EqualError(t, re.Last, "boom 3")
}

func TestRetryPolicyZeroAttemptsStillCallsOnce(t *testing.T) {
	calls := 0
	err := RetryPolicy{}.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errors.New("nope")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetryPolicyCancelledDuringWait(t *testing.T) {
	rec := &sleepRecorder{err: context.Canceled}
	p := RetryPolicy{MaxAttempts: 3, Delay: time.Second, sleep: rec.sleep}

	calls := 0
	err := p.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errors.New("timeout")
	})

	require.Equal(t, 1, calls)
	require.ErrorIs(t, err, context.Canceled)

	var re *common.RetryExhaustedError
	require.ErrorAs(t, err, &re)
	require.Equal(t, 1, re.Attempts)
}

func TestSleepCtx(t *testing.T) {
	require.NoError(t, sleepCtx(context.Background(), 0))
	require.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}
