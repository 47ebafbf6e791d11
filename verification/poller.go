// Package verification drives certificates through verification: it triggers
// verifiers, polls status until a terminal state and raises notifications.
package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"certvault/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultInterval between automatic status checks.
const DefaultInterval = 10 * time.Second

// ErrNotPolling is returned by CheckNow once the poller has stopped.
var ErrNotPolling = errors.New("poller is not running")

// StatusChecker fetches the current verification status of a certificate.
type StatusChecker interface {
	CheckStatus(ctx context.Context, certificateID string) (models.VerificationStatus, error)
}

// StatusCheckerFunc adapts a function, e.g. store.Store.GetStatus, to StatusChecker.
type StatusCheckerFunc func(ctx context.Context, certificateID string) (models.VerificationStatus, error)

func (f StatusCheckerFunc) CheckStatus(ctx context.Context, certificateID string) (models.VerificationStatus, error) {
	return f(ctx, certificateID)
}

type State int

const (
	StateIdle State = iota
	StatePolling
	StateResolved
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateResolved:
		return "resolved"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type PollerOptions struct {
	Interval time.Duration
	// UserID is copied onto raised notifications.
	UserID   string
	Notifier Notifier
	// OnChange runs after every observed status change, outside the poller lock.
	OnChange func(models.VerificationStatus)
	Logger   *zap.Logger
}

// Poller re-checks one certificate on an interval until it reaches a terminal
// status or is stopped. Automatic and manual checks share a single in-flight
// request, and results that land after Stop are discarded.
type Poller struct {
	certificateID string
	checker       StatusChecker
	opts          PollerOptions
	group         singleflight.Group

	mu     sync.Mutex
	state  State
	last   models.VerificationStatus
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(certificateID string, initial models.VerificationStatus, checker StatusChecker, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	return &Poller{
		certificateID: certificateID,
		checker:       checker,
		opts:          opts,
		state:         StateIdle,
		last:          initial,
		done:          make(chan struct{}),
	}
}

// Start begins polling under ctx. It returns false when the poller was already
// started or the initial status is terminal.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return false
	}
	if p.last.IsTerminal() {
		p.state = StateResolved
		close(p.done)
		return false
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.state = StatePolling
	go p.run(p.ctx)
	return true
}

// Stop cancels polling. In-flight results are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateIdle:
		p.state = StateCancelled
		close(p.done)
	case StatePolling:
		p.state = StateCancelled
		p.cancel()
	}
}

// Done is closed once the poller has stopped for any reason.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Status is the last known verification status.
func (p *Poller) Status() models.VerificationStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Poller) CertificateID() string {
	return p.certificateID
}

// CheckNow performs a manual status check, joining any check already in flight.
func (p *Poller) CheckNow(ctx context.Context) (models.VerificationStatus, error) {
	p.mu.Lock()
	runCtx := p.ctx
	polling := p.state == StatePolling
	p.mu.Unlock()

	if !polling {
		return p.Status(), ErrNotPolling
	}

	select {
	case res := <-p.group.DoChan(p.certificateID, p.fetch(runCtx)):
		if res.Err != nil {
			return "", res.Err
		}
		status := res.Val.(models.VerificationStatus)
		if !p.apply(status) {
			return p.Status(), ErrNotPolling
		}
		return status, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *Poller) fetch(ctx context.Context) func() (interface{}, error) {
	return func() (interface{}, error) {
		status, err := p.checker.CheckStatus(ctx, p.certificateID)
		if err != nil {
			return nil, err
		}
		if !status.Valid() {
			return nil, fmt.Errorf("unexpected verification status %q", status)
		}
		return status, nil
	}
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.state == StatePolling {
				p.state = StateCancelled
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			v, err, _ := p.group.Do(p.certificateID, p.fetch(ctx))
			if err != nil {
				if ctx.Err() == nil {
					p.opts.Logger.Warn("Verification status check failed",
						zap.String("certificate_id", p.certificateID), zap.Error(err))
				}
				continue
			}
			p.apply(v.(models.VerificationStatus))
		}
	}
}

// apply records a fetched status. Terminal statuses notify and end polling.
// It reports false when the poller was no longer polling and the result was dropped.
func (p *Poller) apply(status models.VerificationStatus) bool {
	p.mu.Lock()
	if p.state != StatePolling {
		p.mu.Unlock()
		return false
	}
	if status == p.last {
		p.mu.Unlock()
		return true
	}
	p.last = status
	terminal := status.IsTerminal()
	if terminal {
		p.state = StateResolved
		p.cancel()
	}
	p.mu.Unlock()

	p.opts.Logger.Info("Verification status changed",
		zap.String("certificate_id", p.certificateID), zap.String("status", string(status)))

	if p.opts.OnChange != nil {
		p.opts.OnChange(status)
	}
	if terminal && p.opts.Notifier != nil {
		p.opts.Notifier.Notify(context.Background(), terminalNotification(p.opts.UserID, p.certificateID, status))
	}
	return true
}

func terminalNotification(userID, certificateID string, status models.VerificationStatus) models.Notification {
	n := models.Notification{
		UserID:        userID,
		CertificateID: certificateID,
		CreatedAt:     time.Now().UTC(),
	}
	if status == models.StatusVerified {
		n.Title = "Certificate Verified"
		n.Message = "Your certificate has been successfully verified"
		n.Variant = models.VariantDefault
	} else {
		n.Title = "Verification Failed"
		n.Message = "Your certificate could not be verified"
		n.Variant = models.VariantDestructive
	}
	return n
}
