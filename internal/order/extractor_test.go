package order_test

import (
	"testing"

	"github.com/webcungs/order-relay/internal/order"
)

func TestExtractOrderID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"lowercase", "Please confirm d/482 thanks", "482", true},
		{"uppercase with leading zeros", "D/00921 extra", "00921", true},
		{"no match", "no id here", "", false},
		{"first match wins", "d/111 then d/222", "111", true},
		{"embedded in word", "orderd/77 shipped", "77", true},
		{"slash without digits", "see d/ for details", "", false},
		{"digits without prefix", "call 482 now", "", false},
		{"mixed case later in text", "ref: D/5", "5", true},
		{"empty string", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := order.ExtractOrderID(tt.text)
			if ok != tt.ok {
				t.Fatalf("ExtractOrderID(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ExtractOrderID(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
