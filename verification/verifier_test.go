package verification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"certvault/models"
	"certvault/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultDecision(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cert   models.Certificate
		want   models.VerificationStatus
		reason string
	}{
		{"valid", models.Certificate{InstitutionName: "B", IssueDate: "2024-01-01"}, models.StatusVerified, ""},
		{"missing institution", models.Certificate{InstitutionName: " ", IssueDate: "2024-01-01"}, models.StatusRejected, "Institution name is missing"},
		{"bad date", models.Certificate{InstitutionName: "B", IssueDate: "01/01/2024"}, models.StatusRejected, "Issue date is not a valid date"},
		{"future date", models.Certificate{InstitutionName: "B", IssueDate: "2030-01-01"}, models.StatusRejected, "Issue date is in the future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := DefaultDecision(tt.cert, now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func logSteps(t *testing.T, s store.Store, id string) []string {
	t.Helper()
	logs, err := s.ListVerificationLogs(context.Background(), id)
	require.NoError(t, err)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.VerificationStep+"="+l.Status)
	}
	return out
}

func TestSimulatedVerifierResolves(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeededMemory(store.Latency{})
	v := NewSimulatedVerifier(s, 10*time.Millisecond, zap.NewNop())
	defer v.Close()

	cert, err := s.CreateCertificate(ctx, "user-1", models.CertificateFields{
		Title: "A", InstitutionName: "B", ProgramName: "C", IssueDate: "2024-01-01",
	})
	require.NoError(t, err)

	require.NoError(t, v.Verify(ctx, "user-1", cert.ID))
	assert.Eventually(t, func() bool {
		status, _ := s.GetStatus(ctx, cert.ID)
		return status == models.StatusVerified
	}, 2*time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return v.Pending() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{
		"hash_verification=success",
		"issuer_verification=pending",
		"issuer_verification=success",
	}, logSteps(t, s, cert.ID))
}

func TestSimulatedVerifierRejectsWithReason(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeededMemory(store.Latency{})
	v := NewSimulatedVerifier(s, 5*time.Millisecond, zap.NewNop())
	defer v.Close()

	cert, err := s.CreateCertificate(ctx, "user-1", models.CertificateFields{
		Title: "A", InstitutionName: "B", ProgramName: "C", IssueDate: "2999-01-01",
	})
	require.NoError(t, err)
	require.NoError(t, v.Verify(ctx, "user-1", cert.ID))

	assert.Eventually(t, func() bool {
		status, _ := s.GetStatus(ctx, cert.ID)
		return status == models.StatusRejected
	}, 2*time.Second, 5*time.Millisecond)

	got, err := s.GetCertificate(ctx, cert.ID)
	require.NoError(t, err)
	var details map[string]string
	require.NoError(t, json.Unmarshal(got.VerificationDetails, &details))
	assert.Equal(t, "Issue date is in the future", details["reason"])
}

func TestSimulatedVerifierResubmitsRejected(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeededMemory(store.Latency{})
	v := NewSimulatedVerifier(s, time.Hour, zap.NewNop())

	require.NoError(t, v.Verify(ctx, "user-1", "cert-3"))

	status, err := s.GetStatus(ctx, "cert-3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)
	assert.Equal(t, 1, v.Pending())

	require.NoError(t, v.Close())
	assert.Zero(t, v.Pending())
	assert.Error(t, v.Verify(ctx, "user-1", "cert-2"))
}

func TestSimulatedVerifierIgnoresVerified(t *testing.T) {
	s := store.NewSeededMemory(store.Latency{})
	v := NewSimulatedVerifier(s, time.Millisecond, zap.NewNop())
	defer v.Close()

	require.NoError(t, v.Verify(context.Background(), "user-1", "cert-1"))
	assert.Zero(t, v.Pending())
}

func TestWorkerVerifier(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path == "/verify/user-1/cert-missing" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	w := NewWorkerVerifier(srv.URL, "secret", time.Second, zap.NewNop())
	defer w.Close()

	require.NoError(t, w.Verify(context.Background(), "user-1", "cert-2"))
	assert.Equal(t, "/verify/user-1/cert-2", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)

	err := w.Verify(context.Background(), "user-1", "cert-missing")
	assert.ErrorContains(t, err, "404")
}
