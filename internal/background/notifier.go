package background

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kalindhi/kalindhi-api/internal/models"
	"github.com/kalindhi/kalindhi-api/pkg/logger"
)

// Sender delivers a single email
type Sender interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// NotifierStats is a snapshot of delivery counters
type NotifierStats struct {
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
	Queued  int   `json:"queued"`
}

// Notifier delivers email off the request path. Dispatch only enqueues;
// a single worker started with Start performs the sends. Failures are logged
// and counted, never returned to the caller.
type Notifier struct {
	sender      Sender
	logger      *slog.Logger
	sendTimeout time.Duration

	queue   chan models.EmailMessage
	mu      sync.RWMutex
	closed  bool
	started atomic.Bool
	done    chan struct{}

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewNotifier creates a notifier with a queue of queueSize messages
func NewNotifier(sender Sender, logger *slog.Logger, queueSize int, sendTimeout time.Duration) *Notifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Notifier{
		sender:      sender,
		logger:      logger,
		sendTimeout: sendTimeout,
		queue:       make(chan models.EmailMessage, queueSize),
		done:        make(chan struct{}),
	}
}

// Dispatch enqueues msg without blocking. It reports false when the message
// was dropped because the queue is full or the notifier is stopped.
func (n *Notifier) Dispatch(msg models.EmailMessage) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.drop(msg, "notifier stopped")
		return false
	}

	select {
	case n.queue <- msg:
		return true
	default:
		n.drop(msg, "queue full")
		return false
	}
}

func (n *Notifier) drop(msg models.EmailMessage, reason string) {
	n.dropped.Add(1)
	n.logger.Warn("email dropped",
		slog.String("to", logger.SanitizedEmail(msg.To)),
		slog.String("subject", msg.Subject),
		slog.String("reason", reason),
	)
}

// Start launches the delivery worker, which runs until Stop is called and the
// queue is drained. Cancelling ctx does not abandon queued messages; each send
// gets its own timeout.
func (n *Notifier) Start(ctx context.Context) {
	if n.started.Swap(true) {
		return
	}
	go n.run(ctx)
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.done)

	base := context.WithoutCancel(ctx)
	for msg := range n.queue {
		n.deliver(base, msg)
	}

	n.logger.Info("notifier stopped",
		slog.Int64("sent", n.sent.Load()),
		slog.Int64("failed", n.failed.Load()),
		slog.Int64("dropped", n.dropped.Load()),
	)
}

func (n *Notifier) deliver(ctx context.Context, msg models.EmailMessage) {
	sendCtx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()

	if err := n.sender.Send(sendCtx, msg); err != nil {
		n.failed.Add(1)
		n.logger.Error("failed to send email",
			slog.String("to", logger.SanitizedEmail(msg.To)),
			slog.String("subject", msg.Subject),
			slog.Any("error", err),
		)
		return
	}

	n.sent.Add(1)
}

// Stop closes the queue and waits for the worker to drain it, or for ctx
// to expire. Safe to call more than once.
func (n *Notifier) Stop(ctx context.Context) {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	if !n.started.Load() {
		return
	}

	select {
	case <-n.done:
	case <-ctx.Done():
		n.logger.Warn("notifier stop timed out", slog.Int("queued", len(n.queue)))
	}
}

func (n *Notifier) Stats() NotifierStats {
	return NotifierStats{
		Sent:    n.sent.Load(),
		Failed:  n.failed.Load(),
		Dropped: n.dropped.Load(),
		Queued:  len(n.queue),
	}
}
