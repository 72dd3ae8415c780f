package environments

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISPATCH_WAIT_SECONDS", "")
	t.Setenv("PHONE_POLICY", "PREPEND_DEFAULT")

	cfg := Load()

	if cfg.Dispatch.WaitTime != 10*time.Second {
		t.Errorf("expected WaitTime=10s when value is not an int, got %v", cfg.Dispatch.WaitTime)
	}
	if cfg.Dispatch.PhonePolicy != PhonePolicyPrependDefault {
		t.Errorf("expected PhonePolicy=%q, got %q", PhonePolicyPrependDefault, cfg.Dispatch.PhonePolicy)
	}
	if cfg.Server.MaxUploadBytes != 10<<20 {
		t.Errorf("expected MaxUploadBytes=%d, got %d", 10<<20, cfg.Server.MaxUploadBytes)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "7")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_DURATION", "1500ms")
	t.Setenv("TEST_BAD_INT", "seven")

	if got := GetEnvAsInt("TEST_INT", 1); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := GetEnvAsInt("TEST_BAD_INT", 3); got != 3 {
		t.Errorf("expected fallback 3, got %d", got)
	}
	if got := GetEnvAsBool("TEST_BOOL", true); got {
		t.Errorf("expected false, got true")
	}
	if got := GetEnvAsDuration("TEST_DURATION", time.Second); got != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", got)
	}
	if got := GetEnv("TEST_MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}
