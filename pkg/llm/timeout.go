package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds provider calls when no positive timeout is configured.
const DefaultTimeout = 30 * time.Second

type timeoutProvider struct {
	next    LLMProvider
	timeout time.Duration
}

// WithTimeout bounds every call on p. A call that runs past d is cancelled and
// fails with ErrTimeout; there is no retry. d <= 0 means DefaultTimeout.
func WithTimeout(p LLMProvider, d time.Duration) LLMProvider {
	if d <= 0 {
		d = DefaultTimeout
	}
	return &timeoutProvider{next: p, timeout: d}
}

func (t *timeoutProvider) wrap(ctx context.Context, err error) error {
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, t.timeout, err)
	}
	return err
}

func (t *timeoutProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	out, err := t.next.Chat(ctx, history, opts...)
	return out, t.wrap(ctx, err)
}

func (t *timeoutProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	out, err := t.next.Generate(ctx, prompt, opts...)
	return out, t.wrap(ctx, err)
}
