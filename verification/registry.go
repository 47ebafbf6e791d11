package verification

import (
	"context"
	"errors"
	"sync"
	"time"

	"certvault/models"

	"go.uber.org/zap"
)

// Registry owns the active pollers, at most one per certificate.
type Registry struct {
	checker  StatusChecker
	notifier Notifier
	interval time.Duration
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pollers map[string]*Poller
	// certificates whose viewer stopped watching; only an explicit Watch revives them
	dismissed map[string]struct{}
	closed    bool
}

func NewRegistry(checker StatusChecker, notifier Notifier, interval time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.L()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		checker:  checker,
		notifier: notifier,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		pollers:  make(map[string]*Poller),

		dismissed: make(map[string]struct{}),
	}
}

// Watch starts polling certificateID unless it is already watched, the status
// is not pending, or the registry is closed. It reports whether a poller started.
// Watch clears an earlier Stop.
func (r *Registry) Watch(certificateID, userID string, status models.VerificationStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.dismissed, certificateID)
	return r.watchLocked(certificateID, userID, status)
}

// Resume is Watch for background sweeps: certificates stopped with Stop stay
// stopped until the next explicit Watch.
func (r *Registry) Resume(certificateID, userID string, status models.VerificationStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dismissed[certificateID]; ok {
		if status != models.StatusPending {
			delete(r.dismissed, certificateID)
		}
		return false
	}
	return r.watchLocked(certificateID, userID, status)
}

func (r *Registry) watchLocked(certificateID, userID string, status models.VerificationStatus) bool {
	if status != models.StatusPending {
		return false
	}
	if r.closed {
		return false
	}
	if _, ok := r.pollers[certificateID]; ok {
		return false
	}

	p := NewPoller(certificateID, status, r.checker, PollerOptions{
		Interval: r.interval,
		UserID:   userID,
		Notifier: r.notifier,
		Logger:   r.logger,
	})
	if !p.Start(r.ctx) {
		return false
	}
	r.pollers[certificateID] = p

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		<-p.Done()
		r.remove(certificateID, p)
	}()

	r.logger.Debug("Watching certificate", zap.String("certificate_id", certificateID))
	return true
}

func (r *Registry) remove(certificateID string, p *Poller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pollers[certificateID] == p {
		delete(r.pollers, certificateID)
	}
}

// Stop cancels the poller for certificateID, if any, and keeps Resume from
// restarting it. It reports whether a poller was running.
func (r *Registry) Stop(certificateID string) bool {
	r.mu.Lock()
	p, ok := r.pollers[certificateID]
	r.dismissed[certificateID] = struct{}{}
	r.mu.Unlock()
	if !ok {
		return false
	}
	p.Stop()
	<-p.Done()
	r.remove(certificateID, p)
	return true
}

// Dismissed reports whether certificateID was stopped and not watched since.
func (r *Registry) Dismissed(certificateID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.dismissed[certificateID]
	return ok
}

func (r *Registry) Watching(certificateID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pollers[certificateID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pollers)
}

// CheckNow runs a manual check, sharing the watched poller's in-flight request
// when there is one.
func (r *Registry) CheckNow(ctx context.Context, certificateID string) (models.VerificationStatus, error) {
	r.mu.Lock()
	p, ok := r.pollers[certificateID]
	r.mu.Unlock()

	if ok {
		status, err := p.CheckNow(ctx)
		if !errors.Is(err, ErrNotPolling) {
			return status, err
		}
	}
	return r.checker.CheckStatus(ctx, certificateID)
}

// Close stops every poller and waits for them to exit.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}
