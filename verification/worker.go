package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WorkerVerifier hands verification to the external worker, which later
// reports back through the callback endpoint.
type WorkerVerifier struct {
	client *resty.Client
	logger *zap.Logger
}

func NewWorkerVerifier(baseURL, token string, timeout time.Duration, logger *zap.Logger) *WorkerVerifier {
	if logger == nil {
		logger = zap.L()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &WorkerVerifier{client: client, logger: logger}
}

func (w *WorkerVerifier) Verify(ctx context.Context, userID, certificateID string) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"userId":        userID,
			"certificateId": certificateID,
		}).
		Post("/verify/{userId}/{certificateId}")
	if err != nil {
		return fmt.Errorf("verification worker: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("verification worker: %s: %s", resp.Status(), resp.String())
	}

	w.logger.Info("Verification requested from worker",
		zap.String("user_id", userID), zap.String("certificate_id", certificateID))
	return nil
}

func (w *WorkerVerifier) Close() error { return nil }
