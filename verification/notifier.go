package verification

import (
	"context"
	"sync"

	"certvault/models"

	"go.uber.org/zap"
)

// Notifier delivers user-visible notifications. Delivery is best effort;
// implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

type NotifierFunc func(ctx context.Context, n models.Notification)

func (f NotifierFunc) Notify(ctx context.Context, n models.Notification) { f(ctx, n) }

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Notify(_ context.Context, n models.Notification) {
	logger := l.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Info(n.Title,
		zap.String("user_id", n.UserID),
		zap.String("certificate_id", n.CertificateID),
		zap.String("variant", n.Variant),
		zap.String("message", n.Message),
	)
}

// DefaultInboxSize is the number of undelivered notifications kept per user.
const DefaultInboxSize = 50

// Inbox buffers notifications per user until they are drained.
type Inbox struct {
	size int

	mu    sync.Mutex
	queue map[string][]models.Notification
}

func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{size: size, queue: make(map[string][]models.Notification)}
}

func (i *Inbox) Notify(_ context.Context, n models.Notification) {
	if n.UserID == "" {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	q := append(i.queue[n.UserID], n)
	if len(q) > i.size {
		q = q[len(q)-i.size:]
	}
	i.queue[n.UserID] = q
}

// Drain returns and clears the pending notifications of userID, oldest first.
func (i *Inbox) Drain(userID string) []models.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	q := i.queue[userID]
	delete(i.queue, userID)
	if q == nil {
		return []models.Notification{}
	}
	return q
}
