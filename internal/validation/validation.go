package validation

import (
	"regexp"
	"strings"

	"github.com/webcungs/order-relay/internal/errors"
	"github.com/webcungs/order-relay/internal/models"
)

var (
	// Phone numbers: optional leading +, digits only
	numberPattern = regexp.MustCompile(`^\+?\d+$`)

	nonDigits = regexp.MustCompile(`\D`)

	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Validator provides validation methods
type Validator struct{}

// New creates a new validator instance
func New() *Validator {
	return &Validator{}
}

// ValidateSendMessageRequest validates a send-message request. Exactly one
// of number or groupTitle must be present, plus a non-empty message.
func (v *Validator) ValidateSendMessageRequest(req *models.SendMessageRequest) *errors.AppError {
	if req == nil {
		return errors.InvalidRequest("Request body is required")
	}

	hasNumber := strings.TrimSpace(req.Number) != ""
	hasGroup := strings.TrimSpace(req.GroupTitle) != ""

	if hasNumber == hasGroup {
		return errors.ValidationError("Exactly one of 'number' or 'groupTitle' is required")
	}

	if hasNumber && !numberPattern.MatchString(strings.TrimSpace(req.Number)) {
		return errors.ValidationError("'number' must contain digits with an optional leading +")
	}

	if strings.TrimSpace(req.Message) == "" {
		return errors.ValidationError("'message' field is required")
	}

	if len(req.Message) > 4096 {
		return errors.ValidationError("Message too long (maximum 4096 characters)")
	}

	return nil
}

// NormalizeNumber derives a WhatsApp JID from a phone number by stripping
// everything that is not a digit and appending the user-chat domain
func (v *Validator) NormalizeNumber(number string) string {
	return nonDigits.ReplaceAllString(number, "") + "@s.whatsapp.net"
}

// SanitizeMessage trims whitespace, drops null bytes and collapses runs of
// blank lines
func (v *Validator) SanitizeMessage(message string) string {
	message = strings.TrimSpace(message)
	message = strings.ReplaceAll(message, "\x00", "")
	message = newlineRuns.ReplaceAllString(message, "\n\n")
	return message
}
