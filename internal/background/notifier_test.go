package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender records messages and optionally fails or blocks
type recordingSender struct {
	mu      sync.Mutex
	sent    []models.EmailMessage
	failFor string
	release chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, msg models.EmailMessage) error {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if msg.To == s.failFor {
		return errors.New("smtp unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		out = append(out, m.To)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_DeliversAndDrainsOnStop(t *testing.T) {
	sender := &recordingSender{failFor: "bounce@example.com"}
	n := NewNotifier(sender, discardLogger(), 10, time.Second)

	assert.True(t, n.Dispatch(models.EmailMessage{To: "a@example.com", Subject: "one"}))
	assert.True(t, n.Dispatch(models.EmailMessage{To: "bounce@example.com", Subject: "two"}))
	assert.True(t, n.Dispatch(models.EmailMessage{To: "b@example.com", Subject: "three"}))

	n.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n.Stop(ctx)

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, sender.recipients())
	stats := n.Stats()
	assert.Equal(t, int64(2), stats.Sent)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Dropped)
}

func TestNotifier_FullQueueDrops(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, discardLogger(), 1, time.Second)

	assert.True(t, n.Dispatch(models.EmailMessage{To: "a@example.com"}))
	assert.False(t, n.Dispatch(models.EmailMessage{To: "b@example.com"}))
	assert.Equal(t, int64(1), n.Stats().Dropped)
	assert.Equal(t, 1, n.Stats().Queued)
}

func TestNotifier_DispatchAfterStop(t *testing.T) {
	n := NewNotifier(&recordingSender{}, discardLogger(), 4, time.Second)
	n.Stop(context.Background())
	n.Stop(context.Background())

	assert.False(t, n.Dispatch(models.EmailMessage{To: "a@example.com"}))
	assert.Equal(t, int64(1), n.Stats().Dropped)
}

func TestNotifier_SendTimeoutCountsAsFailure(t *testing.T) {
	sender := &recordingSender{release: make(chan struct{})}
	n := NewNotifier(sender, discardLogger(), 4, 20*time.Millisecond)

	require.True(t, n.Dispatch(models.EmailMessage{To: "slow@example.com"}))
	n.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n.Stop(ctx)

	assert.Equal(t, int64(1), n.Stats().Failed)
	assert.Empty(t, sender.recipients())
}

func TestNotifier_DispatchDoesNotBlock(t *testing.T) {
	sender := &recordingSender{release: make(chan struct{})}
	n := NewNotifier(sender, discardLogger(), 2, time.Second)
	n.Start(context.Background())

	start := time.Now()
	for i := 0; i < 10; i++ {
		n.Dispatch(models.EmailMessage{To: "a@example.com"})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(sender.release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n.Stop(ctx)
}
