package store

import "testing"

func TestRedisConfigValidate(t *testing.T) {
	if err := DefaultRedisConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg := DefaultRedisConfig()
	cfg.Addr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty addr")
	}

	cfg = DefaultRedisConfig()
	cfg.DB = 42
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for database number out of range")
	}
}

func TestNewRedisStoreRejectsBadConfig(t *testing.T) {
	if _, err := NewRedisStore(&RedisConfig{DB: -1}); err == nil {
		t.Error("expected error for invalid config")
	}
}
