// Package biogate embeds the biometric gate core in-process. The same
// enrollment, matching and validation services that back the HTTP server
// are wired here over a store the caller picks, so a host application can
// enroll captures and validate probes without running the server.
package biogate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/db"
	dbMemory "github.com/kailas-cloud/biogate/internal/db/memory"
	dbRedis "github.com/kailas-cloud/biogate/internal/db/redis"
	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/extract"
	accesslogrepo "github.com/kailas-cloud/biogate/internal/repository/accesslog"
	identityrepo "github.com/kailas-cloud/biogate/internal/repository/identity"
	templaterepo "github.com/kailas-cloud/biogate/internal/repository/template"
	"github.com/kailas-cloud/biogate/internal/score"
	"github.com/kailas-cloud/biogate/internal/secrets"
	enrolluc "github.com/kailas-cloud/biogate/internal/usecase/enroll"
	matchuc "github.com/kailas-cloud/biogate/internal/usecase/match"
	sessionuc "github.com/kailas-cloud/biogate/internal/usecase/session"
	validateuc "github.com/kailas-cloud/biogate/internal/usecase/validate"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the biogate SDK entry point.
type Client struct {
	store       db.Store
	enrollSvc   *enrolluc.Service
	validateSvc *validateuc.Service
	identities  *identityrepo.Repo
}

// New creates a biogate Client and connects to the store.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: "biogate:",
		thresholds: map[string]float64{
			"face":      0.80,
			"voice":     0.77,
			"retina":    0.65,
			"proximity": 0.20,
		},
		replaceMargin:  0.03,
		contestMargin:  0.02,
		discrimination: make(map[string][]DiscriminationRule),
		logger:         zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("biogate: store required (use WithRedis or WithMemory)")
	}
	if cfg.encryptionSecret == "" || cfg.encryptionSalt == "" || cfg.hashSalt == "" {
		return nil, errors.New("biogate: key material required (use WithSecrets)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("biogate: store not ready: %w", err)
	}

	return wireClient(store, cfg)
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("biogate: create redis store: %w", err)
		}
		return s, nil
	case "memory":
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("biogate: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	keys, err := secrets.NewDerivedKeyProvider(cfg.encryptionSecret, cfg.encryptionSalt)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("biogate: derive encryption key: %w", err)
	}
	cipher := secrets.NewAESGCMCipher(keys)
	hasher := secrets.NewHasher(cfg.hashSalt)

	extractors := extract.NewSet()

	templateRepo := templaterepo.New(store, cipher).
		WithKeyPrefix(cfg.keyPrefix).
		WithReextract(func(m modality.Modality, capture []byte) (feature.Vector, error) {
			ex, ok := extractors.For(m)
			if !ok {
				return feature.Vector{}, fmt.Errorf("no extractor for modality %s", m)
			}
			return ex.Extract(capture)
		})
	accessRepo := accesslogrepo.New(store).WithKeyPrefix(cfg.keyPrefix)
	identityRepo := identityrepo.New(store).WithKeyPrefix(cfg.keyPrefix)

	thresholds := make(map[modality.Modality]float64, len(cfg.thresholds))
	for name, v := range cfg.thresholds {
		m, err := modality.Parse(name)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("biogate: threshold modality: %w", err)
		}
		thresholds[m] = v
	}

	matchSvc := matchuc.New(templateRepo, score.NewSet(), thresholds, cfg.logger).
		WithMargins(cfg.replaceMargin, cfg.contestMargin)
	for name, rules := range cfg.discrimination {
		m, err := modality.Parse(name)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("biogate: discrimination modality: %w", err)
		}
		matchSvc.WithTieBreaker(m, matchuc.NewProfileTieBreaker(internalRules(rules)))
	}

	guard := sessionuc.NewGuard(cfg.overrideIdentity, cfg.logger)

	return &Client{
		store:       store,
		enrollSvc:   enrolluc.New(templateRepo, extractors, hasher, cfg.logger),
		validateSvc: validateuc.New(extractors, matchSvc, guard, accessRepo, identityRepo, hasher, cfg.logger),
		identities:  identityRepo,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnrollBiometric extracts a feature vector from a raw capture and stores
// it as the identity's template for the given modality. Re-enrollment
// replaces the previous template.
func (c *Client) EnrollBiometric(ctx context.Context, identity int64, mod string, capture []byte) error {
	m, err := modality.Parse(mod)
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	if _, err := c.enrollSvc.EnrollBiometric(ctx, identity, m, capture); err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	return nil
}

// EnrollProximity stores hashed proximity identifiers for an identity.
// At least one identifier must be present.
func (c *Client) EnrollProximity(ctx context.Context, identity int64, ids ProximityIdentifiers) error {
	err := c.enrollSvc.EnrollProximity(ctx, identity, enrolluc.ProximityIdentifiers{
		KeyFob:        ids.KeyFob,
		MobileDevice:  ids.MobileDevice,
		BluetoothAddr: ids.BluetoothAddr,
		NFCTag:        ids.NFCTag,
	})
	if err != nil {
		return fmt.Errorf("enroll proximity: %w", err)
	}
	return nil
}

// Status reports which modalities the identity has templates for.
func (c *Client) Status(ctx context.Context, identity int64) (map[string]bool, error) {
	st, err := c.enrollSvc.Status(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	out := make(map[string]bool, len(st))
	for m, ok := range st {
		out[string(m)] = ok
	}
	return out, nil
}

// Reset deletes the identity's template for one modality.
func (c *Client) Reset(ctx context.Context, identity int64, mod string) error {
	m, err := modality.Parse(mod)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := c.enrollSvc.Reset(ctx, identity, m); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// ResetAll deletes the identity's templates across all modalities.
func (c *Client) ResetAll(ctx context.Context, identity int64) error {
	if err := c.enrollSvc.ResetAll(ctx, identity); err != nil {
		return fmt.Errorf("reset all: %w", err)
	}
	return nil
}

// Validate evaluates one authentication probe against the enrolled
// population. Extraction failures and rejections come back as a Decision,
// not an error; errors mean the request could not be evaluated at all.
func (c *Client) Validate(ctx context.Context, req ValidationRequest) (ValidationResult, error) {
	m, err := modality.Parse(req.Modality)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("validate: %w", err)
	}

	internal := validateuc.Request{
		Modality:   m,
		Capture:    req.Capture,
		SourceAddr: req.SourceAddr,
	}
	if req.Proximity != nil {
		internal.Proximity = &enrolluc.ProximityIdentifiers{
			KeyFob:        req.Proximity.KeyFob,
			MobileDevice:  req.Proximity.MobileDevice,
			BluetoothAddr: req.Proximity.BluetoothAddr,
			NFCTag:        req.Proximity.NFCTag,
		}
	}
	if req.Hint != nil {
		hm, err := modality.Parse(req.Hint.Modality)
		if err != nil {
			return ValidationResult{}, fmt.Errorf("validate: hint: %w", err)
		}
		internal.Hint = &domain.SessionHint{Identity: req.Hint.Identity, Modality: hm}
	}

	res, err := c.validateSvc.Validate(ctx, internal)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("validate: %w", err)
	}
	return fromResult(res), nil
}

// UpsertIdentity stores an identity profile and its owned vehicles.
func (c *Client) UpsertIdentity(ctx context.Context, ident Identity, vehicles []Vehicle) error {
	dv := make([]domain.Vehicle, len(vehicles))
	for i, v := range vehicles {
		dv[i] = domain.Vehicle(v)
	}
	err := c.identities.Upsert(ctx, domain.Identity{
		ID:            ident.ID,
		DisplayName:   ident.DisplayName,
		EnrolledSince: ident.EnrolledSince,
	}, dv)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}
	return nil
}

// Vehicles lists the vehicles owned by an identity.
func (c *Client) Vehicles(ctx context.Context, identity int64) ([]Vehicle, error) {
	dv, err := c.identities.ListOwnedVehicles(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("vehicles: %w", err)
	}
	out := make([]Vehicle, len(dv))
	for i, v := range dv {
		out[i] = Vehicle(v)
	}
	return out, nil
}

func internalRules(rules []DiscriminationRule) []matchuc.DiscriminationRule {
	out := make([]matchuc.DiscriminationRule, len(rules))
	for i, r := range rules {
		out[i] = matchuc.DiscriminationRule{
			Feature:      r.Feature,
			Threshold:    r.Threshold,
			AbovePrefers: r.AbovePrefers,
			BelowPrefers: r.BelowPrefers,
		}
	}
	return out
}
