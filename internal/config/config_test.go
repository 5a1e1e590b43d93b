package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
		},
		Security: SecurityConfig{
			EncryptionSecret: "secret",
			EncryptionSalt:   "salt",
			HashSalt:         "hash-salt",
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if cfg.Validate() == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "redis" or "memory", got "postgres"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_RedisRequiresAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if cfg.Validate() == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MemoryDriverNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memory"
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := validConfig()
	cfg.Matching.Thresholds = map[string]float64{"face": 1.2}

	if cfg.Validate() == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}

func TestValidate_MissingSecuritySettings(t *testing.T) {
	for _, strip := range []func(*Config){
		func(c *Config) { c.Security.EncryptionSecret = "" },
		func(c *Config) { c.Security.EncryptionSalt = "" },
		func(c *Config) { c.Security.HashSalt = "" },
	} {
		cfg := validConfig()
		strip(&cfg)
		if cfg.Validate() == nil {
			t.Fatal("expected error for missing security setting")
		}
	}
}

func TestValidate_DiscriminationRules(t *testing.T) {
	cfg := validConfig()
	cfg.Matching.Discrimination = map[string][]DiscriminationRule{
		"voice": {{Feature: "", Threshold: 150}},
	}
	if cfg.Validate() == nil {
		t.Fatal("expected error for rule without feature")
	}

	cfg = validConfig()
	cfg.Matching.Discrimination = map[string][]DiscriminationRule{
		"voice": {{Feature: "f0_pitch_mean", Threshold: 150}},
	}
	if cfg.Validate() == nil {
		t.Fatal("expected error for rule preferring nobody")
	}

	cfg = validConfig()
	cfg.Matching.Discrimination = map[string][]DiscriminationRule{
		"voice": {{Feature: "f0_pitch_mean", Threshold: 150, AbovePrefers: 2, BelowPrefers: 1}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.MaxCaptureBytes != 8<<20 {
		t.Errorf("expected MaxCaptureBytes=%d, got %d", 8<<20, cfg.HTTP.MaxCaptureBytes)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver='redis', got %q", cfg.Database.Driver)
	}
	if cfg.Storage.KeyPrefix != "biogate:" {
		t.Errorf("expected KeyPrefix='biogate:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Matching.Thresholds["face"] != 0.80 {
		t.Errorf("expected face threshold 0.80, got %v", cfg.Matching.Thresholds["face"])
	}
	if cfg.Matching.Thresholds["proximity"] != 0.20 {
		t.Errorf("expected proximity threshold 0.20, got %v", cfg.Matching.Thresholds["proximity"])
	}
	if cfg.Matching.ReplaceMargin != 0.03 {
		t.Errorf("expected ReplaceMargin=0.03, got %v", cfg.Matching.ReplaceMargin)
	}
	if cfg.Matching.ContestMargin != 0.02 {
		t.Errorf("expected ContestMargin=0.02, got %v", cfg.Matching.ContestMargin)
	}
	if cfg.Session.OverrideIdentity != 1 {
		t.Errorf("expected OverrideIdentity=1, got %d", cfg.Session.OverrideIdentity)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5, MaxCaptureBytes: 1024},
		Database: DatabaseConfig{Driver: "memory", ReadinessTimeout: 15},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
		Matching: MatchingConfig{
			Thresholds:    map[string]float64{"face": 0.9},
			ReplaceMargin: 0.05,
			ContestMargin: 0.04,
		},
		Session: SessionConfig{OverrideIdentity: 42},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Matching.Thresholds["face"] != 0.9 {
		t.Errorf("expected face threshold 0.9, got %v", cfg.Matching.Thresholds["face"])
	}
	// Modalities without an explicit threshold still get defaults.
	if cfg.Matching.Thresholds["voice"] != 0.77 {
		t.Errorf("expected voice threshold 0.77, got %v", cfg.Matching.Thresholds["voice"])
	}
	if cfg.Session.OverrideIdentity != 42 {
		t.Errorf("expected OverrideIdentity=42, got %d", cfg.Session.OverrideIdentity)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("BIOGATE_TEST_SECRET", "s3cr3t")
	defer os.Unsetenv("BIOGATE_TEST_SECRET")

	in := []byte("secret: ${BIOGATE_TEST_SECRET}\nsalt: ${BIOGATE_TEST_MISSING:-fallback}\nempty: ${BIOGATE_TEST_MISSING}")
	out := string(expandEnvVars(in))

	expected := "secret: s3cr3t\nsalt: fallback\nempty: "
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("ENV")
	if env := GetEnv(); env != "local" {
		t.Errorf("expected 'local', got %q", env)
	}

	os.Setenv("ENV", "prod")
	defer os.Unsetenv("ENV")
	if env := GetEnv(); env != "prod" {
		t.Errorf("expected 'prod', got %q", env)
	}
}
