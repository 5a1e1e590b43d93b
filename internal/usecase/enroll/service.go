package enroll

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/extract"
	"github.com/kailas-cloud/biogate/internal/metrics"
	"github.com/kailas-cloud/biogate/internal/secrets"
)

// Service enrolls biometric captures and proximity identifiers as
// templates, and answers enrollment status queries.
type Service struct {
	store      TemplateStore
	extractors *extract.Set
	hasher     *secrets.Hasher
	logger     *zap.Logger
	now        func() time.Time
}

// New creates an enrollment service.
func New(store TemplateStore, extractors *extract.Set, hasher *secrets.Hasher, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		extractors: extractors,
		hasher:     hasher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the enrollment timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EnrollBiometric extracts features from capture and stores them as the
// template for identity under m, replacing any previous template. An
// unusable capture fails extraction and nothing is stored.
func (s *Service) EnrollBiometric(ctx context.Context, identity int64, m modality.Modality, capture []byte) (feature.Vector, error) {
	if !m.IsBiometric() {
		return feature.Vector{}, fmt.Errorf("%w: modality %q is not enrollable from a capture", domain.ErrExtractionFailed, m)
	}

	ex, ok := s.extractors.For(m)
	if !ok {
		return feature.Vector{}, fmt.Errorf("%w: no extractor for modality %q", domain.ErrExtractionFailed, m)
	}

	vec, err := ex.Extract(capture)
	if err != nil {
		metrics.ExtractionFailuresTotal.WithLabelValues(string(m)).Inc()
		s.logger.Warn("enrollment extraction failed",
			zap.Int64("identity", identity),
			zap.String("modality", string(m)),
			zap.Error(err))
		return feature.Vector{}, err
	}

	tpl := domain.Template{
		Identity:   identity,
		Modality:   m,
		Features:   vec,
		RawCapture: capture,
		EnrolledAt: s.now().UTC(),
	}
	if err := s.store.UpsertTemplate(ctx, tpl); err != nil {
		return feature.Vector{}, fmt.Errorf("%w: upsert template: %w", domain.ErrStoreUnavailable, err)
	}

	metrics.EnrollmentsTotal.WithLabelValues(string(m)).Inc()
	s.logger.Info("template enrolled",
		zap.Int64("identity", identity),
		zap.String("modality", string(m)),
		zap.Int("features", vec.Len()),
		zap.Bool("reduced", vec.Reduced()))
	return vec, nil
}

// EnrollProximity hashes the presented identifiers and stores them as
// the proximity template for identity. At least one identifier must be
// present.
func (s *Service) EnrollProximity(ctx context.Context, identity int64, ids ProximityIdentifiers) error {
	if ids.Empty() {
		return domain.ErrNoIdentifiers
	}

	set := &domain.ProximitySet{
		KeyFob:        s.hasher.HashIdentifier(ids.KeyFob),
		MobileDevice:  s.hasher.HashIdentifier(ids.MobileDevice),
		BluetoothAddr: s.hasher.HashIdentifier(ids.BluetoothAddr),
		NFCTag:        s.hasher.HashIdentifier(ids.NFCTag),
	}

	tpl := domain.Template{
		Identity:   identity,
		Modality:   modality.Proximity,
		Proximity:  set,
		EnrolledAt: s.now().UTC(),
	}
	if err := s.store.UpsertTemplate(ctx, tpl); err != nil {
		return fmt.Errorf("%w: upsert proximity template: %w", domain.ErrStoreUnavailable, err)
	}

	metrics.EnrollmentsTotal.WithLabelValues(string(modality.Proximity)).Inc()
	s.logger.Info("proximity identifiers enrolled", zap.Int64("identity", identity))
	return nil
}

// Status reports which modalities have a stored template for identity.
func (s *Service) Status(ctx context.Context, identity int64) (map[modality.Modality]bool, error) {
	status := make(map[modality.Modality]bool, len(modality.All()))
	for _, m := range modality.All() {
		ok, err := s.store.HasTemplate(ctx, identity, m)
		if err != nil {
			return nil, fmt.Errorf("%w: template status: %w", domain.ErrStoreUnavailable, err)
		}
		status[m] = ok
	}
	return status, nil
}

// Reset deletes the stored template for identity under m.
func (s *Service) Reset(ctx context.Context, identity int64, m modality.Modality) error {
	if err := s.store.DeleteTemplate(ctx, identity, m); err != nil {
		return fmt.Errorf("%w: delete template: %w", domain.ErrStoreUnavailable, err)
	}
	s.logger.Info("template reset",
		zap.Int64("identity", identity),
		zap.String("modality", string(m)))
	return nil
}

// ResetAll deletes every stored template for identity.
func (s *Service) ResetAll(ctx context.Context, identity int64) error {
	if err := s.store.DeleteAllTemplates(ctx, identity); err != nil {
		return fmt.Errorf("%w: delete templates: %w", domain.ErrStoreUnavailable, err)
	}
	s.logger.Info("all templates reset", zap.Int64("identity", identity))
	return nil
}
