package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")
)

func classifyTest(err error) Decision {
	if errors.Is(err, errTransient) {
		return Decision{Retry: true}
	}
	return Decision{}
}

func newTestPolicy(maxRetries int, slept *[]time.Duration) Policy {
	p := Policy{
		MaxRetries: maxRetries,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Classify:   classifyTest,
	}
	p.sleep = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return ctx.Err()
	}
	return p
}

func TestPolicy_Do_RetriesTransientUntilSuccess(t *testing.T) {
	var slept []time.Duration
	p := newTestPolicy(3, &slept)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, slept)
}

func TestPolicy_Do_StopsOnNonRetryable(t *testing.T) {
	var slept []time.Duration
	p := newTestPolicy(3, &slept)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errFatal
	})

	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestPolicy_Do_ExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	p := newTestPolicy(2, &slept)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errTransient
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestPolicy_Do_HonoursHint(t *testing.T) {
	var slept []time.Duration
	p := newTestPolicy(1, &slept)
	p.Classify = func(err error) Decision {
		return Decision{Retry: true, After: 5 * time.Second}
	}

	calls := 0
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errTransient
		}
		return nil
	})

	// hint acima do teto é limitado ao MaxDelay
	assert.Equal(t, []time.Duration{time.Second}, slept)
}

func TestPolicy_Do_CancelledContext(t *testing.T) {
	var slept []time.Duration
	p := newTestPolicy(5, &slept)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, time.Second, p.Delay(1, 0))
	assert.Equal(t, 2*time.Second, p.Delay(2, 0))
	assert.Equal(t, 8*time.Second, p.Delay(4, 0))
	assert.Equal(t, 10*time.Second, p.Delay(6, 0))

	p.Jitter = true
	for i := 0; i < 20; i++ {
		d := p.Delay(2, 0)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}
