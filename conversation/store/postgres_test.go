package store

import "testing"

func TestPostgresConfigValidate(t *testing.T) {
	if err := DefaultPostgresConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg := DefaultPostgresConfig()
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port out of range")
	}

	cfg = DefaultPostgresConfig()
	cfg.SSLMode = "sometimes"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown sslmode")
	}
}
