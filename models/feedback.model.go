package models

const (
	FeedbackBug     = "bug"
	FeedbackFeature = "feature"
	FeedbackOther   = "other"
)

type FeedbackPayload struct {
	Message    string `json:"message" validate:"required"`
	Category   string `json:"category" validate:"required,oneof=bug feature other"`
	UserEmail  string `json:"userEmail,omitempty" validate:"omitempty,email"`
	Screenshot string `json:"screenshot,omitempty"`
}
