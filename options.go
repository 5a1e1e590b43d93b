package biogate

import (
	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver   string // "redis" or "memory"
	addrs    []string
	password string

	encryptionSecret string
	encryptionSalt   string
	hashSalt         string

	keyPrefix        string
	thresholds       map[string]float64
	replaceMargin    float64
	contestMargin    float64
	discrimination   map[string][]DiscriminationRule
	overrideIdentity int64

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = addrs
		c.password = password
	}
}

// WithMemory configures an in-process store. Templates and access logs
// live only as long as the Client; intended for tests and demos.
func WithMemory() Option {
	return func(c *clientConfig) {
		c.driver = "memory"
	}
}

// WithSecrets sets the key material: encryptionSecret and encryptionSalt
// derive the AES key protecting stored templates, hashSalt keys the
// proximity identifier digests. All three are required.
func WithSecrets(encryptionSecret, encryptionSalt, hashSalt string) Option {
	return func(c *clientConfig) {
		c.encryptionSecret = encryptionSecret
		c.encryptionSalt = encryptionSalt
		c.hashSalt = hashSalt
	}
}

// WithKeyPrefix overrides the storage key namespace. Default: "biogate:".
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithThreshold overrides the acceptance threshold for one modality
// ("face", "voice", "retina", "proximity").
func WithThreshold(modality string, threshold float64) Option {
	return func(c *clientConfig) {
		c.thresholds[modality] = threshold
	}
}

// WithMargins overrides the replace/contest margins of candidate
// selection. Defaults: 0.03 and 0.02.
func WithMargins(replace, contest float64) Option {
	return func(c *clientConfig) {
		c.replaceMargin = replace
		c.contestMargin = contest
	}
}

// WithDiscrimination installs near-tie discrimination rules for one
// modality. Rules only ever apply between two candidates whose scores
// fall within the contest margin.
func WithDiscrimination(modality string, rules ...DiscriminationRule) Option {
	return func(c *clientConfig) {
		c.discrimination[modality] = append(c.discrimination[modality], rules...)
	}
}

// WithOverrideIdentity designates an identity exempt from cross-modal
// session checks. Zero (the default) disables the exemption.
func WithOverrideIdentity(id int64) Option {
	return func(c *clientConfig) {
		c.overrideIdentity = id
	}
}

// WithLogger enables structured logging for client operations.
// Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
