package chatclient

import (
	"context"
	"io"
	"time"
	"unicode/utf8"
)

const DefaultTypingDelay = 20 * time.Millisecond

// Typewriter reveals text one character at a time.
type Typewriter struct {
	Out   io.Writer
	Delay time.Duration
}

func NewTypewriter(out io.Writer) *Typewriter {
	return &Typewriter{Out: out, Delay: DefaultTypingDelay}
}

// Reveal writes text rune by rune. When ctx is cancelled the rest is written at
// once and ctx.Err() is returned.
func (t *Typewriter) Reveal(ctx context.Context, text string) error {
	if t.Delay <= 0 {
		_, err := io.WriteString(t.Out, text)
		return err
	}

	ticker := time.NewTicker(t.Delay)
	defer ticker.Stop()

	rest := text
	for rest != "" {
		_, size := utf8.DecodeRuneInString(rest)
		if _, err := io.WriteString(t.Out, rest[:size]); err != nil {
			return err
		}
		rest = rest[size:]
		if rest == "" {
			break
		}

		select {
		case <-ctx.Done():
			if _, err := io.WriteString(t.Out, rest); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
