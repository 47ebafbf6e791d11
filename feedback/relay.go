// Package feedback forwards user feedback to a Telegram chat.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"certvault/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("feedback relay is not configured")

// ValidationError lists the payload fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "invalid feedback: " + strings.Join(parts, ", ")
}

type Config struct {
	APIURL   string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// Relay sends each accepted payload exactly once; failures are not retried.
type Relay struct {
	cfg      Config
	client   *resty.Client
	logger   *zap.Logger
}

func NewRelay(cfg Config, logger *zap.Logger) *Relay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.L()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")
	return &Relay{cfg: cfg, client: client, logger: logger}
}

var validate = validator.New()

// Validate checks the payload without sending anything. A blank message is
// treated as missing.
func Validate(p models.FeedbackPayload) error {
	p.Message = strings.TrimSpace(p.Message)
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			switch fe.Field() {
			case "Message":
				fields["message"] = "Message is required"
			case "Category":
				fields["category"] = "Category must be one of bug, feature, other"
			case "UserEmail":
				fields["userEmail"] = "Invalid email format"
			default:
				fields[fe.Field()] = fe.Tag()
			}
		}
		return &ValidationError{Fields: fields}
	}
	return nil
}

// FormatMessage renders the chat message for p.
func FormatMessage(p models.FeedbackPayload) string {
	email := p.UserEmail
	if email == "" {
		email = "Not provided"
	}
	return fmt.Sprintf("🆕 New Feedback\n\n📝 Category: %s\n✉️ Email: %s\n\n💬 Message:\n%s",
		p.Category, email, p.Message)
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send validates p and posts it to the configured chat.
func (r *Relay) Send(ctx context.Context, p models.FeedbackPayload) error {
	if err := Validate(p); err != nil {
		return err
	}
	if r.cfg.BotToken == "" || r.cfg.ChatID == "" {
		return ErrNotConfigured
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetRawPathParam("token", r.cfg.BotToken).
		SetBody(sendMessageRequest{
			ChatID:    r.cfg.ChatID,
			Text:      FormatMessage(p),
			ParseMode: "HTML",
		}).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram responded %s", resp.Status())
	}

	r.logger.Info("Feedback relayed", zap.String("category", p.Category))
	return nil
}
