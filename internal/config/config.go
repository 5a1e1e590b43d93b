package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the biogate API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Matching MatchingConfig `yaml:"matching"`
	Session  SessionConfig  `yaml:"session"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// MaxCaptureBytes bounds decoded capture payloads.
	MaxCaptureBytes int `yaml:"max_capture_bytes"`
}

// DatabaseConfig holds template/log store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// MatchingConfig holds resolver calibration.
type MatchingConfig struct {
	// Thresholds is the per-modality acceptance floor.
	Thresholds map[string]float64 `yaml:"thresholds"`
	// ReplaceMargin: a candidate must beat the incumbent by more than
	// this to replace it outright.
	ReplaceMargin float64 `yaml:"replace_margin"`
	// ContestMargin: a candidate within this of the incumbent may still
	// win through the discrimination profile.
	ContestMargin float64 `yaml:"contest_margin"`
	// Discrimination lists per-modality near-tie rules. Calibration
	// data, not code: tune per deployment population.
	Discrimination map[string][]DiscriminationRule `yaml:"discrimination"`
}

// DiscriminationRule prefers one identity over another based on a single
// discriminative sub-feature threshold.
type DiscriminationRule struct {
	Feature      string  `yaml:"feature"`
	Threshold    float64 `yaml:"threshold"`
	AbovePrefers int64   `yaml:"above_prefers"`
	BelowPrefers int64   `yaml:"below_prefers"`
}

// SessionConfig holds cross-modal session policy.
type SessionConfig struct {
	// OverrideIdentity is exempt from the cross-modal mismatch check.
	// Deliberate policy relaxation for a default/demo identity.
	OverrideIdentity int64 `yaml:"override_identity"`
}

// SecurityConfig holds at-rest protection settings.
type SecurityConfig struct {
	// EncryptionSecret feeds the PBKDF2 key derivation for capture
	// encryption at rest.
	EncryptionSecret string `yaml:"encryption_secret"`
	EncryptionSalt   string `yaml:"encryption_salt"`
	// HashSalt salts proximity identifier digests.
	HashSalt string `yaml:"hash_salt"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// Default acceptance thresholds. Face and voice demand high confidence;
// retina is lower because web-based scans are noisier; proximity scores
// by discrete identifier matches where even one hit is meaningful.
var defaultThresholds = map[string]float64{
	"face":      0.80,
	"voice":     0.77,
	"retina":    0.65,
	"proximity": 0.20,
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxCaptureBytes <= 0 {
		c.HTTP.MaxCaptureBytes = 8 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "biogate:"
	}
	if c.Matching.Thresholds == nil {
		c.Matching.Thresholds = map[string]float64{}
	}
	for m, t := range defaultThresholds {
		if _, ok := c.Matching.Thresholds[m]; !ok {
			c.Matching.Thresholds[m] = t
		}
	}
	if c.Matching.ReplaceMargin <= 0 {
		c.Matching.ReplaceMargin = 0.03
	}
	if c.Matching.ContestMargin <= 0 {
		c.Matching.ContestMargin = 0.02
	}
	if c.Session.OverrideIdentity == 0 {
		c.Session.OverrideIdentity = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"memory\", got %q", c.Database.Driver)
	}
	if c.Database.Driver == "redis" && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required for the redis driver")
	}
	for m, t := range c.Matching.Thresholds {
		if t < 0 || t > 1 {
			return fmt.Errorf("matching.thresholds.%s must be in [0, 1], got %v", m, t)
		}
	}
	if c.Matching.ContestMargin >= c.Matching.ReplaceMargin+0.05 {
		return fmt.Errorf("matching.contest_margin %v is implausibly above replace_margin %v",
			c.Matching.ContestMargin, c.Matching.ReplaceMargin)
	}
	for m, rules := range c.Matching.Discrimination {
		for i, r := range rules {
			if r.Feature == "" {
				return fmt.Errorf("matching.discrimination.%s[%d].feature is required", m, i)
			}
			if r.AbovePrefers == 0 && r.BelowPrefers == 0 {
				return fmt.Errorf("matching.discrimination.%s[%d] must prefer at least one identity", m, i)
			}
		}
	}
	if c.Security.EncryptionSecret == "" {
		return fmt.Errorf("security.encryption_secret is required")
	}
	if c.Security.EncryptionSalt == "" {
		return fmt.Errorf("security.encryption_salt is required")
	}
	if c.Security.HashSalt == "" {
		return fmt.Errorf("security.hash_salt is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
