// Package validate orchestrates one authentication attempt end to end:
// feature extraction, candidate resolution, the cross-modal session
// check, access logging and vehicle disclosure.
package validate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/extract"
	"github.com/kailas-cloud/biogate/internal/metrics"
	"github.com/kailas-cloud/biogate/internal/secrets"
	"github.com/kailas-cloud/biogate/internal/usecase/enroll"
	"github.com/kailas-cloud/biogate/internal/usecase/match"
)

// Service runs validation attempts.
type Service struct {
	extractors *extract.Set
	resolver   Resolver
	guard      SessionGuard
	recorder   AccessRecorder
	identities IdentityReader
	hasher     *secrets.Hasher
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a validation service.
func New(extractors *extract.Set, resolver Resolver, guard SessionGuard, recorder AccessRecorder, identities IdentityReader, hasher *secrets.Hasher, logger *zap.Logger) *Service {
	return &Service{
		extractors: extractors,
		resolver:   resolver,
		guard:      guard,
		recorder:   recorder,
		identities: identities,
		hasher:     hasher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the access log timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Validate evaluates one attempt and returns the decision. Rejections,
// extraction failures and security violations are evaluated outcomes,
// not errors; only infrastructure faults surface as errors.
func (s *Service) Validate(ctx context.Context, req Request) (Result, error) {
	if !req.Modality.IsValid() {
		return Result{}, fmt.Errorf("%w: unknown modality %q", domain.ErrExtractionFailed, req.Modality)
	}

	res, err := s.resolve(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return Result{}, err
		}
		// Unusable probe: rejected with zero confidence.
		metrics.ExtractionFailuresTotal.WithLabelValues(string(req.Modality)).Inc()
		metrics.ValidationsTotal.WithLabelValues(string(req.Modality), "extraction_failed").Inc()
		s.logger.Warn("probe extraction failed",
			zap.String("modality", string(req.Modality)),
			zap.Error(err))
		s.record(ctx, req, 0, false, 0)
		return Result{Decision: domain.Decision{
			Accepted:  false,
			ErrorKind: domain.KindOf(err),
		}}, nil
	}

	metrics.TemplatesScanned.WithLabelValues(string(req.Modality)).Observe(float64(res.Scanned))
	metrics.MatchConfidence.WithLabelValues(string(req.Modality)).Observe(res.Confidence)
	confidence := domain.RoundConfidence(res.Confidence)

	if !res.Accepted {
		metrics.ValidationsTotal.WithLabelValues(string(req.Modality), "rejected").Inc()
		s.record(ctx, req, res.Identity, false, 0)
		return Result{Decision: domain.Decision{
			Accepted:   false,
			Confidence: confidence,
		}}, nil
	}

	if s.guard.Check(req.Hint, res.Identity) {
		metrics.ValidationsTotal.WithLabelValues(string(req.Modality), "violation").Inc()
		metrics.SecurityViolationsTotal.Inc()
		// Both implicated identities get a failed entry before the
		// violation surfaces.
		s.record(ctx, req, res.Identity, false, 0)
		s.record(ctx, req, req.Hint.Identity, false, 0)
		return Result{Decision: domain.Decision{
			Accepted:          false,
			Identity:          res.Identity,
			Confidence:        confidence,
			SecurityViolation: true,
		}}, nil
	}

	identity, err := s.identities.GetIdentity(ctx, res.Identity)
	if err != nil {
		return Result{}, fmt.Errorf("resolved identity %d: %w", res.Identity, err)
	}
	vehicles, err := s.identities.ListOwnedVehicles(ctx, res.Identity)
	if err != nil {
		return Result{}, fmt.Errorf("vehicles for identity %d: %w", res.Identity, err)
	}

	var vehicleID int64
	if len(vehicles) > 0 {
		vehicleID = vehicles[0].ID
	}
	metrics.ValidationsTotal.WithLabelValues(string(req.Modality), "accepted").Inc()
	s.record(ctx, req, res.Identity, true, vehicleID)

	return Result{
		Decision: domain.Decision{
			Accepted:   true,
			Identity:   res.Identity,
			Confidence: confidence,
		},
		Identity: &identity,
		Vehicles: vehicles,
	}, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (match.Resolution, error) {
	if req.Modality == modality.Proximity {
		var ids enroll.ProximityIdentifiers
		if req.Proximity != nil {
			ids = *req.Proximity
		}
		probe := domain.ProximitySet{
			KeyFob:        s.hasher.HashIdentifier(ids.KeyFob),
			MobileDevice:  s.hasher.HashIdentifier(ids.MobileDevice),
			BluetoothAddr: s.hasher.HashIdentifier(ids.BluetoothAddr),
			NFCTag:        s.hasher.HashIdentifier(ids.NFCTag),
		}
		return s.resolver.ResolveProximity(ctx, probe)
	}

	ex, ok := s.extractors.For(req.Modality)
	if !ok {
		return match.Resolution{}, fmt.Errorf("%w: no extractor for modality %q", domain.ErrExtractionFailed, req.Modality)
	}
	probe, err := ex.Extract(req.Capture)
	if err != nil {
		return match.Resolution{}, err
	}
	return s.resolver.Resolve(ctx, probe)
}

func (s *Service) record(ctx context.Context, req Request, identity int64, success bool, vehicle int64) {
	entry := domain.AccessEntry{
		ID:         uuid.NewString(),
		Identity:   identity,
		Modality:   req.Modality,
		Success:    success,
		Vehicle:    vehicle,
		SourceAddr: req.SourceAddr,
		Timestamp:  s.now().UTC(),
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Error("access log append failed",
			zap.Int64("identity", identity),
			zap.String("modality", string(req.Modality)),
			zap.Error(err))
	}
}
