package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to VerificationStatus
		ok       bool
	}{
		{StatusPending, StatusVerified, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusPending, true},
		{StatusRejected, StatusPending, true},
		{StatusRejected, StatusVerified, false},
		{StatusVerified, StatusPending, false},
		{StatusVerified, StatusRejected, false},
		{StatusVerified, StatusVerified, true},
		{StatusPending, "approved", false},
		{"", StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to))
		})
	}
}

func TestTransitionTo(t *testing.T) {
	cert := &Certificate{VerificationStatus: StatusVerified}

	err := cert.TransitionTo(StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusVerified, cert.VerificationStatus)

	cert.VerificationStatus = StatusRejected
	assert.NoError(t, cert.TransitionTo(StatusPending))
	assert.Equal(t, StatusPending, cert.VerificationStatus)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusVerified.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestUserUpdateApply(t *testing.T) {
	user := &User{ID: "user-1", FullName: "Alex Johnson", Email: "alex@example.com"}

	UserUpdate{FullName: "Alex J."}.Apply(user)

	assert.Equal(t, "Alex J.", user.FullName)
	assert.Equal(t, "alex@example.com", user.Email)
}

func TestCertificateJSONFields(t *testing.T) {
	raw, err := json.Marshal(Certificate{ID: "cert-1", VerificationStatus: StatusPending})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"id", "user_id", "title", "institution_name", "program_name",
		"issue_date", "verification_url", "certificate_url", "verification_status", "created_at", "updated_at"} {
		assert.Contains(t, fields, key)
	}
	// Mint fields appear only once minted
	assert.NotContains(t, fields, "nft_mint_address")
	assert.NotContains(t, fields, "verification_url_pdf")
}
