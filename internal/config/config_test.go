package config_test

import (
	"testing"
	"time"

	"github.com/webcungs/order-relay/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.WhatsApp.GroupName != "WEB CUNGS" {
		t.Errorf("GroupName = %q, want %q", cfg.WhatsApp.GroupName, "WEB CUNGS")
	}
	if cfg.Order.APIEndpoint != "http://localhost:8000/api/orders" {
		t.Errorf("APIEndpoint = %q, want default local URL", cfg.Order.APIEndpoint)
	}
	if cfg.WhatsApp.ReconnectDelay != 5*time.Second {
		t.Errorf("ReconnectDelay = %v, want 5s", cfg.WhatsApp.ReconnectDelay)
	}
	if cfg.WhatsApp.Heartbeat != 5*time.Minute {
		t.Errorf("Heartbeat = %v, want 5m", cfg.WhatsApp.Heartbeat)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("GROUP_NAME", "Another Group")
	t.Setenv("API_ENDPOINT", "https://orders.example.com/api")
	t.Setenv("API_KEYS", "key-one-long-enough, key-two-long-enough")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("Port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.WhatsApp.GroupName != "Another Group" {
		t.Errorf("GroupName = %q, want %q", cfg.WhatsApp.GroupName, "Another Group")
	}
	if len(cfg.Security.APIKeys) != 2 {
		t.Errorf("APIKeys = %v, want 2 entries", cfg.Security.APIKeys)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "99999")

	if _, err := config.Load(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestLoad_InvalidEndpoint(t *testing.T) {
	t.Setenv("API_ENDPOINT", "not a url")

	if _, err := config.Load(); err == nil {
		t.Error("expected error for malformed API endpoint")
	}
}

func TestValidate_EmptyGroupName(t *testing.T) {
	t.Setenv("GROUP_NAME", "   ")

	if _, err := config.Load(); err == nil {
		t.Error("expected error for blank group name")
	}
}
