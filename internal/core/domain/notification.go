package domain

// Notification templates understood by the downstream notification service.
const (
	TemplateForgotPassword       = "forgotPassword"
	TemplateResetPasswordSuccess = "resetPasswordSuccess"
)

// NotificationMessage is the flat payload published to the notification
// service. It is immutable once constructed and serialized verbatim.
type NotificationMessage struct {
	ReceiverEmail string `json:"receiverEmail,omitempty"`
	ResetLink     string `json:"resetLink,omitempty"`
	Username      string `json:"username"`
	Template      string `json:"template"`
}
