package store

import "testing"

func TestPostgresConfigValidate(t *testing.T) {
	if err := DefaultPostgresConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg := DefaultPostgresConfig()
	cfg.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}

	cfg = DefaultPostgresConfig()
	cfg.SSLMode = "maybe"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown sslmode")
	}

	cfg = DefaultPostgresConfig()
	cfg.Host = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty host")
	}
}
