package clipboard_test

import (
	"bytes"
	"context"
	"github.com/myrjola/interviewdash/internal/clipboard"
	"github.com/myrjola/interviewdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (w *recordingWriter) WriteText(_ context.Context, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.writes = append(w.writes, text)
	return nil
}

func (w *recordingWriter) Writes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.writes...)
}

func TestButton_Copy(t *testing.T) {
	t.Parallel()
	w := &recordingWriter{}
	b := clipboard.NewButton(w)
	b.ResetDelay = 50 * time.Millisecond
	t.Cleanup(b.Close)

	require.False(t, b.Copied())
	require.NoError(t, b.Copy(context.Background(), "call-123"))

	assert.Equal(t, []string{"call-123"}, w.Writes())
	assert.True(t, b.Copied())
	assert.Eventually(t, func() bool { return !b.Copied() }, time.Second, 5*time.Millisecond)
}

func TestButton_Copy_restartsDelay(t *testing.T) {
	t.Parallel()
	w := &recordingWriter{}
	b := clipboard.NewButton(w)
	b.ResetDelay = 400 * time.Millisecond
	t.Cleanup(b.Close)

	ctx := context.Background()
	require.NoError(t, b.Copy(ctx, "abc"))
	time.Sleep(250 * time.Millisecond)
	require.NoError(t, b.Copy(ctx, "xyz"))
	time.Sleep(250 * time.Millisecond)

	// The first reset would have fired by now.
	assert.True(t, b.Copied())
	assert.Equal(t, []string{"abc", "xyz"}, w.Writes())
	assert.Eventually(t, func() bool { return !b.Copied() }, time.Second, 5*time.Millisecond)
}

func TestButton_Copy_writeFailure(t *testing.T) {
	t.Parallel()
	broken := errors.NewSentinel("no clipboard")
	b := clipboard.NewButton(&recordingWriter{err: broken})
	t.Cleanup(b.Close)

	err := b.Copy(context.Background(), "call-123")
	require.ErrorIs(t, err, broken)
	assert.False(t, b.Copied())
}

func TestButton_Close(t *testing.T) {
	t.Parallel()
	w := &recordingWriter{}
	b := clipboard.NewButton(w)

	require.NoError(t, b.Copy(context.Background(), "call-123"))
	require.True(t, b.Copied())
	b.Close()
	assert.False(t, b.Copied())

	err := b.Copy(context.Background(), "again")
	require.ErrorIs(t, err, clipboard.ErrClosed)
	assert.Equal(t, []string{"call-123"}, w.Writes())
}

func TestOSC52_WriteText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, clipboard.NewOSC52(&out).WriteText(context.Background(), "call-123"))
	assert.Equal(t, "\x1b]52;c;Y2FsbC0xMjM=\a", out.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out.Reset()
	require.ErrorIs(t, clipboard.NewOSC52(&out).WriteText(ctx, "x"), context.Canceled)
	assert.Empty(t, out.String())
}
