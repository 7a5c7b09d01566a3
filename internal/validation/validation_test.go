package validation_test

import (
	"testing"

	"github.com/webcungs/order-relay/internal/models"
	"github.com/webcungs/order-relay/internal/validation"
)

func TestValidateSendMessageRequest(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name    string
		req     models.SendMessageRequest
		wantErr bool
	}{
		{"number ok", models.SendMessageRequest{Number: "+62812345", Message: "hi"}, false},
		{"number without plus", models.SendMessageRequest{Number: "62812345", Message: "hi"}, false},
		{"group ok", models.SendMessageRequest{GroupTitle: "WEB CUNGS", Message: "hi"}, false},
		{"both present", models.SendMessageRequest{Number: "+62812345", GroupTitle: "WEB CUNGS", Message: "hi"}, true},
		{"neither present", models.SendMessageRequest{Message: "hi"}, true},
		{"number with letters", models.SendMessageRequest{Number: "+628abc", Message: "hi"}, true},
		{"number with spaces", models.SendMessageRequest{Number: "+62 812", Message: "hi"}, true},
		{"missing message", models.SendMessageRequest{Number: "+62812345"}, true},
		{"blank message", models.SendMessageRequest{Number: "+62812345", Message: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSendMessageRequest(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSendMessageRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSendMessageRequest_Nil(t *testing.T) {
	v := validation.New()
	if err := v.ValidateSendMessageRequest(nil); err == nil {
		t.Error("expected error for nil request")
	}
}

func TestNormalizeNumber(t *testing.T) {
	v := validation.New()

	tests := []struct {
		in   string
		want string
	}{
		{"+62812345", "62812345@s.whatsapp.net"},
		{"62812345", "62812345@s.whatsapp.net"},
		{"+1 (555) 012-3456", "15550123456@s.whatsapp.net"},
	}

	for _, tt := range tests {
		if got := v.NormalizeNumber(tt.in); got != tt.want {
			t.Errorf("NormalizeNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeMessage(t *testing.T) {
	v := validation.New()

	got := v.SanitizeMessage("  hello\x00\n\n\n\nworld  ")
	if got != "hello\n\nworld" {
		t.Errorf("SanitizeMessage() = %q", got)
	}
}
