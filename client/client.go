// Package client talks to the certvault HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"certvault/feedback"
	"certvault/models"
	"certvault/services"
	"certvault/session"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
	}
}

// SetToken authenticates subsequent requests.
func (c *Client) SetToken(token string) *Client {
	c.http.SetAuthToken(token)
	return c
}

func (c *Client) do(req *resty.Request, method, path string, out interface{}) (string, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return "", &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
	}
	if resp.IsError() || !env.Status {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: env.Message}
		if resp.StatusCode() == 422 {
			_ = json.Unmarshal(env.Data, &apiErr.Fields)
		}
		return "", apiErr
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return env.Message, nil
}

func (c *Client) Login(ctx context.Context, walletAddress string) (*session.Session, error) {
	var s session.Session
	_, err := c.do(c.http.R().SetContext(ctx).
		SetBody(map[string]string{"wallet_address": walletAddress}),
		resty.MethodPost, "/auth/wallet/login", &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Connect signs in with the server's mock wallet.
func (c *Client) Connect(ctx context.Context) (*session.Session, error) {
	var s session.Session
	if _, err := c.do(c.http.R().SetContext(ctx), resty.MethodPost, "/auth/wallet/connect", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(c.http.R().SetContext(ctx), resty.MethodPost, "/auth/logout", nil)
	return err
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if _, err := c.do(c.http.R().SetContext(ctx), resty.MethodGet, "/user/profile", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, fullName, email string) (*models.User, error) {
	var u models.User
	_, err := c.do(c.http.R().SetContext(ctx).
		SetBody(map[string]string{"full_name": fullName, "email": email}),
		resty.MethodPut, "/user/profile", &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Dashboard(ctx context.Context) (*services.Dashboard, error) {
	var d services.Dashboard
	if _, err := c.do(c.http.R().SetContext(ctx), resty.MethodGet, "/dashboard", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if _, err := c.do(c.http.R().SetContext(ctx), resty.MethodGet, "/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) List(ctx context.Context) ([]models.Certificate, error) {
	var out []models.Certificate
	if _, err := c.do(c.http.R().SetContext(ctx), resty.MethodGet, "/certificates", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) certificate(ctx context.Context, method, path, id string) (*models.Certificate, string, error) {
	var cert models.Certificate
	msg, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id), method, path, &cert)
	if err != nil {
		return nil, "", err
	}
	return &cert, msg, nil
}

func (c *Client) Get(ctx context.Context, id string) (*models.Certificate, error) {
	cert, _, err := c.certificate(ctx, resty.MethodGet, "/certificates/{id}", id)
	return cert, err
}

// Create uploads a certificate file with its fields. The returned message
// tells whether verification was started.
func (c *Client) Create(ctx context.Context, fields models.CertificateFields, filename string, file io.Reader) (*models.Certificate, string, error) {
	var cert models.Certificate
	msg, err := c.do(c.http.R().SetContext(ctx).
		SetFormData(map[string]string{
			"title":            fields.Title,
			"institution_name": fields.InstitutionName,
			"program_name":     fields.ProgramName,
			"issue_date":       fields.IssueDate,
		}).
		SetFileReader("certificate_file", filename, file),
		resty.MethodPost, "/certificates", &cert)
	if err != nil {
		return nil, "", err
	}
	return &cert, msg, nil
}

func (c *Client) Verify(ctx context.Context, id string) (*models.Certificate, error) {
	cert, _, err := c.certificate(ctx, resty.MethodPost, "/certificates/{id}/verify", id)
	return cert, err
}

// Unwatch stops the server-side poller of a certificate.
func (c *Client) Unwatch(ctx context.Context, id string) error {
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id),
		resty.MethodDelete, "/certificates/{id}/watch", nil)
	return err
}

// MintResult is the outcome of a mint.
type MintResult struct {
	MintAddress string              `json:"mint_address"`
	ArweaveURL  string              `json:"arweave_url"`
	Certificate *models.Certificate `json:"certificate"`
}

func (c *Client) Mint(ctx context.Context, id string) (*MintResult, error) {
	var out MintResult
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id),
		resty.MethodPost, "/certificates/{id}/mint", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logs(ctx context.Context, id string) ([]models.VerificationLog, error) {
	var out []models.VerificationLog
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id),
		resty.MethodGet, "/certificates/{id}/logs", &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Share(ctx context.Context, id string) (*services.ShareLink, error) {
	var out services.ShareLink
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id),
		resty.MethodGet, "/certificates/{id}/share", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckStatus reads the current verification status of a certificate. It lets
// a Client drive a verification.Poller.
func (c *Client) CheckStatus(ctx context.Context, id string) (models.VerificationStatus, error) {
	var out struct {
		Status models.VerificationStatus `json:"verification_status"`
	}
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id),
		resty.MethodGet, "/certificates/{id}/status", &out)
	if err != nil {
		return "", err
	}
	return out.Status, nil
}

// Feedback posts to the feedback relay, which answers {success, error}.
// Invalid payloads are rejected locally with a *feedback.ValidationError and
// never sent.
func (c *Client) Feedback(ctx context.Context, p models.FeedbackPayload) error {
	p.Message = strings.TrimSpace(p.Message)
	if err := feedback.Validate(p); err != nil {
		return err
	}

	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetBody(p).
		SetResult(&out).
		SetError(&out).
		Post("/api/feedback")
	if err != nil {
		return fmt.Errorf("POST /api/feedback: %w", err)
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status()
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}
