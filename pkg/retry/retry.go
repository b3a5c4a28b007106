// Package retry implementa a política de novas tentativas usada nas chamadas
// a provedores externos: backoff exponencial com teto, limite de tentativas e
// decisão por tipo de erro.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Decision diz se um erro deve ser tentado de novo. After, quando positivo,
// substitui o backoff calculado (ex.: Retry-After).
type Decision struct {
	Retry bool
	After time.Duration
}

// Classifier decide, a partir do erro, se vale tentar de novo.
type Classifier func(err error) Decision

// Policy é uma política de retry limitada. O valor zero não tenta de novo.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     bool
	Classify   Classifier
	OnRetry    func(attempt int, delay time.Duration, err error)

	sleep func(ctx context.Context, d time.Duration) error
}

// ExhaustedError indica que o erro era recuperável mas as tentativas acabaram.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do executa fn até que ela retorne nil, um erro não recuperável, o contexto
// seja cancelado ou as tentativas acabem.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		decision := p.classify(err)
		if !decision.Retry {
			return err
		}

		if attempt == p.MaxRetries {
			break
		}

		delay := p.Delay(attempt+1, decision.After)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}

		if err := p.doSleep(ctx, delay); err != nil {
			return lastErr
		}
	}

	return &ExhaustedError{Attempts: p.MaxRetries + 1, Err: lastErr}
}

// Delay calcula a espera antes da tentativa de número attempt (1 = primeiro retry).
func (p Policy) Delay(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		if p.MaxDelay > 0 && hint > p.MaxDelay {
			return p.MaxDelay
		}
		return hint
	}

	if p.BaseDelay <= 0 {
		return 0
	}

	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		// metade fixa, metade aleatória
		half := delay / 2
		delay = half + rand.Float64()*half
	}

	return time.Duration(delay)
}

func (p Policy) classify(err error) Decision {
	if p.Classify == nil {
		return Decision{}
	}
	return p.Classify(err)
}

func (p Policy) doSleep(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep espera d ou até o contexto ser cancelado.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
