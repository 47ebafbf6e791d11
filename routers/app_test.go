package routers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	authControllers "certvault/controllers/auth"
	certificateController "certvault/controllers/certificate"
	feedbackController "certvault/controllers/feedback"
	userProfileController "certvault/controllers/userControllers"
	"certvault/feedback"
	"certvault/files"
	"certvault/mint"
	"certvault/services"
	"certvault/session"
	"certvault/store"
	"certvault/verification"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const callbackSecret = "worker-secret"

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app      *fiber.App
	telegram *httptest.Server
	hits     atomic.Int32
}

func newTestServer(t *testing.T, telegramStatus int) *testServer {
	t.Helper()
	logger := zap.NewNop()
	ts := &testServer{}

	ts.telegram = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		w.WriteHeader(telegramStatus)
	}))
	t.Cleanup(ts.telegram.Close)

	s := store.NewSeededMemory(store.Latency{})
	verifier := verification.NewSimulatedVerifier(s, time.Hour, logger)
	inbox := verification.NewInbox(0)
	registry := verification.NewRegistry(verification.StatusCheckerFunc(s.GetStatus), inbox, time.Hour, logger)
	t.Cleanup(func() {
		registry.Close()
		_ = verifier.Close()
	})

	uploadDir := t.TempDir()
	storage := files.NewStorage(uploadDir)
	sessions := session.NewManager("test-secret", time.Hour, s, logger)
	certs := services.NewCertificateService(services.Deps{
		Store:         s,
		Verifier:      verifier,
		Registry:      registry,
		Minter:        mint.NewMinter(s, logger),
		Storage:       storage,
		PublicBaseURL: "http://localhost:3000",
		Logger:        logger,
	})

	ts.app = NewApp(Handlers{
		Sessions: sessions,
		Auth:     &authControllers.AuthController{Sessions: sessions, Wallet: session.NewWalletSimulator(sessions, false)},
		Profile: &userProfileController.ProfileController{
			Profiles:  services.NewProfileService(s, storage, logger),
			Dashboard: services.NewDashboardService(s),
			Inbox:     inbox,
		},
		Certificates: &certificateController.CertificateController{Certs: certs},
		Feedback: &feedbackController.FeedbackController{
			Relay: feedback.NewRelay(feedback.Config{APIURL: ts.telegram.URL, BotToken: "1:x", ChatID: "7"}, logger),
		},
		CallbackSecret: callbackSecret,
		UploadDir:      uploadDir,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func jsonRequest(method, path string, body interface{}, token string) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/auth/wallet/login",
		map[string]string{"wallet_address": store.DemoWallet}, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var s session.Session
	require.NoError(t, json.Unmarshal(decode(t, body).Data, &s))
	require.NotEmpty(t, s.Token)
	return s.Token
}

func TestFeedbackEndpoint(t *testing.T) {
	t.Run("GET is not allowed", func(t *testing.T) {
		ts := newTestServer(t, http.StatusOK)
		resp, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/feedback", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("OPTIONS answers preflight", func(t *testing.T) {
		ts := newTestServer(t, http.StatusOK)
		req := httptest.NewRequest(http.MethodOptions, "/api/feedback", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")

		resp, _ := ts.do(t, req)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST", resp.Header.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
	})

	t.Run("POST relays", func(t *testing.T) {
		ts := newTestServer(t, http.StatusOK)
		resp, body := ts.do(t, jsonRequest(http.MethodPost, "/api/feedback",
			map[string]string{"message": "Nice", "category": "feature"}, ""))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, string(body))
		assert.EqualValues(t, 1, ts.hits.Load())
	})

	t.Run("empty message is rejected before sending", func(t *testing.T) {
		ts := newTestServer(t, http.StatusOK)
		resp, body := ts.do(t, jsonRequest(http.MethodPost, "/api/feedback",
			map[string]string{"message": "", "category": "bug"}, ""))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), `"success":false`)
		assert.Zero(t, ts.hits.Load())
	})

	t.Run("unreadable body fails without sending", func(t *testing.T) {
		ts := newTestServer(t, http.StatusOK)
		req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"message":`))
		req.Header.Set("Content-Type", "application/json")
		resp, body := ts.do(t, req)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"success":false,"error":"Failed to process feedback"}`, string(body))
		assert.Zero(t, ts.hits.Load())
	})

	t.Run("upstream failure", func(t *testing.T) {
		ts := newTestServer(t, http.StatusBadGateway)
		resp, body := ts.do(t, jsonRequest(http.MethodPost, "/api/feedback",
			map[string]string{"message": "Broken", "category": "bug"}, ""))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"success":false,"error":"Failed to process feedback"}`, string(body))
	})
}

func TestWalletLogin(t *testing.T) {
	ts := newTestServer(t, http.StatusOK)

	resp, body := ts.do(t, jsonRequest(http.MethodPost, "/auth/wallet/login",
		map[string]string{"wallet_address": "not-a-wallet"}, ""))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "wallet_address")

	resp, _ = ts.do(t, jsonRequest(http.MethodPost, "/auth/wallet/connect", nil, ""))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	token := ts.login(t)

	resp, _ = ts.do(t, jsonRequest(http.MethodPost, "/auth/logout", nil, token))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, jsonRequest(http.MethodGet, "/certificates", nil, token))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCertificatesRequireAuth(t *testing.T) {
	ts := newTestServer(t, http.StatusOK)
	resp, _ := ts.do(t, jsonRequest(http.MethodGet, "/certificates", nil, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, jsonRequest(http.MethodGet, "/user/profile", nil, "garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCertificateRoutes(t *testing.T) {
	ts := newTestServer(t, http.StatusOK)
	token := ts.login(t)

	t.Run("list", func(t *testing.T) {
		resp, body := ts.do(t, jsonRequest(http.MethodGet, "/certificates", nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var certs []map[string]interface{}
		require.NoError(t, json.Unmarshal(decode(t, body).Data, &certs))
		assert.Len(t, certs, 3)
	})

	t.Run("not found", func(t *testing.T) {
		resp, _ := ts.do(t, jsonRequest(http.MethodGet, "/certificates/cert-missing", nil, token))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("mint conflicts", func(t *testing.T) {
		resp, _ := ts.do(t, jsonRequest(http.MethodPost, "/certificates/cert-1/mint", nil, token))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		resp, _ = ts.do(t, jsonRequest(http.MethodPost, "/certificates/cert-2/mint", nil, token))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("status check", func(t *testing.T) {
		resp, body := ts.do(t, jsonRequest(http.MethodGet, "/certificates/cert-2/status", nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"verification_status":"pending"}`, string(decode(t, body).Data))
	})

	t.Run("share", func(t *testing.T) {
		resp, body := ts.do(t, jsonRequest(http.MethodGet, "/certificates/cert-1/share", nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "http://localhost:3000/view/user-1/cert-1")
	})

	t.Run("public pages", func(t *testing.T) {
		resp, body := ts.do(t, jsonRequest(http.MethodGet, "/verify/cert-1", nil, ""))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "log-1")

		resp, _ = ts.do(t, jsonRequest(http.MethodGet, "/view/user-2/cert-1", nil, ""))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("dashboard", func(t *testing.T) {
		resp, body := ts.do(t, jsonRequest(http.MethodGet, "/dashboard", nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"total":3`)
	})
}

func pngUpload(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("certificate_file", "x.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/certificates", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestCreateCertificate(t *testing.T) {
	ts := newTestServer(t, http.StatusOK)
	token := ts.login(t)

	req := pngUpload(t, map[string]string{
		"title":            "A",
		"institution_name": "B",
		"program_name":     "C",
		"issue_date":       "2024-01-01",
	})
	req.Header.Set("Authorization", "Bearer "+token)

	resp, body := ts.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var cert map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, body).Data, &cert))
	assert.Equal(t, "pending", cert["verification_status"])
	url := cert["certificate_url"].(string)
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	resp, served := ts.do(t, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(served, []byte("%PDF")))

	req = pngUpload(t, map[string]string{"title": "A", "issue_date": "yesterday"})
	req.Header.Set("Authorization", "Bearer "+token)
	resp, body = ts.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "institution_name")
	assert.Contains(t, string(body), "issue_date")
}

func TestVerificationCallback(t *testing.T) {
	ts := newTestServer(t, http.StatusOK)
	payload := map[string]interface{}{
		"certificate_id": "cert-2",
		"status":         "verified",
	}

	resp, _ := ts.do(t, jsonRequest(http.MethodPost, "/internal/verification/callback", payload, ""))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req := jsonRequest(http.MethodPost, "/internal/verification/callback", map[string]interface{}{"certificate_id": "cert-2", "status": "done"}, "")
	req.Header.Set("X-Callback-Secret", callbackSecret)
	resp, _ = ts.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	req = jsonRequest(http.MethodPost, "/internal/verification/callback", payload, "")
	req.Header.Set("X-Callback-Secret", callbackSecret)
	resp, body := ts.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"verification_status":"verified"`)

	req = jsonRequest(http.MethodPost, "/internal/verification/callback", map[string]interface{}{"certificate_id": "cert-2", "status": "pending"}, "")
	req.Header.Set("X-Callback-Secret", callbackSecret)
	resp, _ = ts.do(t, req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProfileRoutes(t *testing.T) {
	ts := newTestServer(t, http.StatusOK)
	token := ts.login(t)

	resp, body := ts.do(t, jsonRequest(http.MethodGet, "/user/profile", nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Alex Johnson")

	resp, body = ts.do(t, jsonRequest(http.MethodPut, "/user/profile", map[string]string{"full_name": "Alex J."}, token))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "Alex J.")

	resp, _ = ts.do(t, jsonRequest(http.MethodPut, "/user/profile", map[string]string{"email": "nope"}, token))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = ts.do(t, jsonRequest(http.MethodGet, "/notifications", nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(decode(t, body).Data))
}
