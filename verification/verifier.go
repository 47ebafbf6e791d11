package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"certvault/models"
	"certvault/store"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Verifier starts verification of a pending certificate. Results arrive later
// through the store, where pollers pick them up.
type Verifier interface {
	Verify(ctx context.Context, userID, certificateID string) error
	Close() error
}

// Decision resolves a certificate to a terminal status, with a rejection reason.
type Decision func(cert models.Certificate, now time.Time) (models.VerificationStatus, string)

// DefaultDecision verifies certificates with an institution and a parseable,
// non-future issue date.
func DefaultDecision(cert models.Certificate, now time.Time) (models.VerificationStatus, string) {
	if strings.TrimSpace(cert.InstitutionName) == "" {
		return models.StatusRejected, "Institution name is missing"
	}
	issued, err := time.Parse("2006-01-02", cert.IssueDate)
	if err != nil {
		return models.StatusRejected, "Issue date is not a valid date"
	}
	if issued.After(now) {
		return models.StatusRejected, "Issue date is in the future"
	}
	return models.StatusVerified, ""
}

// SimulatedVerifier stands in for the verification worker: it records the
// hash and issuer steps and resolves each certificate after a fixed delay.
type SimulatedVerifier struct {
	store        store.Store
	resolveAfter time.Duration
	decide       Decision
	logger       *zap.Logger
	now          func() time.Time

	wg     sync.WaitGroup
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewSimulatedVerifier(s store.Store, resolveAfter time.Duration, logger *zap.Logger) *SimulatedVerifier {
	if logger == nil {
		logger = zap.L()
	}
	return &SimulatedVerifier{
		store:        s,
		resolveAfter: resolveAfter,
		decide:       DefaultDecision,
		logger:       logger,
		now:          time.Now,
		timers:       make(map[string]*time.Timer),
	}
}

// WithDecision replaces the resolution rule.
func (v *SimulatedVerifier) WithDecision(d Decision) *SimulatedVerifier {
	v.decide = d
	return v
}

func (v *SimulatedVerifier) Verify(ctx context.Context, userID, certificateID string) error {
	cert, err := v.store.GetCertificate(ctx, certificateID)
	if err != nil {
		return err
	}
	if cert.VerificationStatus == models.StatusRejected {
		if _, err := v.store.SetStatus(ctx, certificateID, models.StatusPending, datatypes.JSON(`{}`)); err != nil {
			return fmt.Errorf("resubmit %s: %w", certificateID, err)
		}
	} else if cert.VerificationStatus != models.StatusPending {
		return nil
	}

	steps := []models.VerificationLog{
		{CertificateID: certificateID, VerificationStep: models.StepHashVerification, Status: models.LogSuccess},
		{CertificateID: certificateID, VerificationStep: models.StepIssuerVerification, Status: models.LogPending},
	}
	for i := range steps {
		if err := v.store.AppendVerificationLog(ctx, &steps[i]); err != nil {
			return fmt.Errorf("log %s: %w", steps[i].VerificationStep, err)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("verifier closed")
	}
	if t, ok := v.timers[certificateID]; ok && t.Stop() {
		v.wg.Done()
	}
	v.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(v.resolveAfter, func() {
		defer v.wg.Done()
		v.mu.Lock()
		if v.timers[certificateID] == timer {
			delete(v.timers, certificateID)
		}
		v.mu.Unlock()
		v.resolve(certificateID)
	})
	v.timers[certificateID] = timer

	v.logger.Info("Verification started",
		zap.String("user_id", userID),
		zap.String("certificate_id", certificateID),
		zap.Duration("resolve_after", v.resolveAfter))
	return nil
}

func (v *SimulatedVerifier) resolve(certificateID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cert, err := v.store.GetCertificate(ctx, certificateID)
	if err != nil {
		v.logger.Error("Verification resolve failed", zap.String("certificate_id", certificateID), zap.Error(err))
		return
	}
	if cert.VerificationStatus != models.StatusPending {
		return
	}

	status, reason := v.decide(*cert, v.now())
	var details datatypes.JSON
	logStatus := models.LogSuccess
	if status == models.StatusRejected {
		details = reasonJSON(reason)
		logStatus = models.LogFailed
	}

	if _, err := v.store.SetStatus(ctx, certificateID, status, details); err != nil {
		v.logger.Error("Verification resolve failed", zap.String("certificate_id", certificateID), zap.Error(err))
		return
	}
	if err := v.store.AppendVerificationLog(ctx, &models.VerificationLog{
		CertificateID:    certificateID,
		VerificationStep: models.StepIssuerVerification,
		Status:           logStatus,
		Details:          details,
	}); err != nil {
		v.logger.Warn("Failed to append verification log", zap.String("certificate_id", certificateID), zap.Error(err))
	}

	v.logger.Info("Verification resolved",
		zap.String("certificate_id", certificateID), zap.String("status", string(status)))
}

// Pending reports how many certificates await resolution.
func (v *SimulatedVerifier) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.timers)
}

// Close cancels outstanding resolutions and waits for running ones.
func (v *SimulatedVerifier) Close() error {
	v.mu.Lock()
	v.closed = true
	for id, t := range v.timers {
		if t.Stop() {
			v.wg.Done()
		}
		delete(v.timers, id)
	}
	v.mu.Unlock()

	v.wg.Wait()
	return nil
}

func reasonJSON(reason string) datatypes.JSON {
	b, _ := json.Marshal(map[string]string{"reason": reason})
	return datatypes.JSON(b)
}
