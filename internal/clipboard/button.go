// Package clipboard copies text and keeps a short-lived "copied" indicator.
package clipboard

import (
	"context"
	"github.com/myrjola/interviewdash/internal/errors"
	"sync"
	"time"
)

// DefaultResetDelay is how long Copied stays true after a successful copy.
const DefaultResetDelay = 2 * time.Second

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// Button is a copy action with a transient indicator.
//
// The indicator is set by a successful Copy and cleared after ResetDelay. A new copy restarts the delay. Close clears
// the indicator and stops the pending reset. Button is safe for concurrent use.
type Button struct {
	writer Writer
	// ResetDelay overrides DefaultResetDelay when positive. Set it before the first Copy.
	ResetDelay time.Duration

	mu     sync.Mutex
	copied bool
	timer  *time.Timer
	// generation invalidates resets scheduled by earlier copies.
	generation uint64
	closed     bool
}

func NewButton(w Writer) *Button {
	return &Button{writer: w} //nolint:exhaustruct // zero values are the initial state.
}

var ErrClosed = errors.NewSentinel("clipboard button closed")

// Copy writes text to the clipboard once and sets the indicator on success.
func (b *Button) Copy(ctx context.Context, text string) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := b.writer.WriteText(ctx, text); err != nil {
		return errors.Wrap(err, "write clipboard text")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.stopTimer()
	b.generation++
	generation := b.generation
	b.copied = true
	b.timer = time.AfterFunc(b.resetDelay(), func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.generation == generation {
			b.copied = false
			b.timer = nil
		}
	})
	return nil
}

// Copied reports whether the indicator is set.
func (b *Button) Copied() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.copied
}

// Close clears the indicator and stops any pending reset. Copy fails with ErrClosed afterwards.
func (b *Button) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopTimer()
	b.generation++
	b.copied = false
	b.closed = true
}

func (b *Button) stopTimer() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Button) resetDelay() time.Duration {
	if b.ResetDelay > 0 {
		return b.ResetDelay
	}
	return DefaultResetDelay
}
