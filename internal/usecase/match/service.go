// Package match resolves a probe against the enrolled template
// population of one modality.
package match

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/score"
)

// Service scores a probe against every enrolled template and selects the
// best candidate above the modality threshold. The scan is tolerant:
// one corrupt template never aborts the rest.
type Service struct {
	templates  TemplateSource
	scorers    *score.Set
	thresholds map[modality.Modality]float64
	// A challenger within contestMargin of the leader may win through
	// the tie breaker; beyond replaceMargin the leader is uncontested.
	replaceMargin float64
	contestMargin float64
	tieBreakers   map[modality.Modality]TieBreaker
	logger        *zap.Logger
}

// New creates a match resolver.
func New(
	templates TemplateSource,
	scorers *score.Set,
	thresholds map[modality.Modality]float64,
	logger *zap.Logger,
) *Service {
	return &Service{
		templates:     templates,
		scorers:       scorers,
		thresholds:    thresholds,
		replaceMargin: 0.03,
		contestMargin: 0.02,
		tieBreakers:   make(map[modality.Modality]TieBreaker),
		logger:        logger,
	}
}

// WithMargins overrides the replace/contest margins.
func (s *Service) WithMargins(replace, contest float64) *Service {
	s.replaceMargin = replace
	s.contestMargin = contest
	return s
}

// WithTieBreaker installs a near-tie disambiguation strategy for a modality.
func (s *Service) WithTieBreaker(m modality.Modality, tb TieBreaker) *Service {
	s.tieBreakers[m] = tb
	return s
}

// Resolve scans all templates of the probe's modality. Zero enrolled
// templates is "no match", never an error. Store failures surface as
// ErrStoreUnavailable: the request could not be evaluated at all.
func (s *Service) Resolve(ctx context.Context, probe feature.Vector) (Resolution, error) {
	m := probe.Modality()
	scorer, ok := s.scorers.For(m)
	if !ok {
		return Resolution{}, fmt.Errorf("no scorer for modality %s", m)
	}

	templates, err := s.templates.ListTemplates(ctx, m)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: list templates: %w", domain.ErrStoreUnavailable, err)
	}

	candidates := make([]Candidate, 0, len(templates))
	for _, tpl := range templates {
		if tpl.Identity <= 0 || tpl.Features.IsZero() {
			s.logger.Warn("Skipping corrupt template",
				zap.Int64("identity", tpl.Identity),
				zap.String("modality", m.String()),
			)
			continue
		}
		raw := scorer.Score(probe, tpl.Features)
		candidates = append(candidates, Candidate{
			Identity: tpl.Identity,
			Score:    raw + score.Perturbation(tpl.Identity, m),
		})
	}

	return s.pick(probe, m, candidates, len(templates)), nil
}

// ResolveProximity scores a hashed identifier set against proximity
// templates. A probe with no identifiers at all cannot be evaluated.
func (s *Service) ResolveProximity(ctx context.Context, probe domain.ProximitySet) (Resolution, error) {
	if probe.Empty() {
		return Resolution{}, domain.ErrNoIdentifiers
	}

	templates, err := s.templates.ListTemplates(ctx, modality.Proximity)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: list templates: %w", domain.ErrStoreUnavailable, err)
	}

	candidates := make([]Candidate, 0, len(templates))
	for _, tpl := range templates {
		if tpl.Identity <= 0 || tpl.Proximity == nil {
			s.logger.Warn("Skipping corrupt proximity template", zap.Int64("identity", tpl.Identity))
			continue
		}
		raw := score.ProximityScore(probe, *tpl.Proximity)
		candidates = append(candidates, Candidate{
			Identity: tpl.Identity,
			Score:    raw + score.Perturbation(tpl.Identity, modality.Proximity),
		})
	}

	return s.pick(feature.Vector{}, modality.Proximity, candidates, len(templates)), nil
}

// pick orders candidates deterministically and applies the near-tie
// contest. Sorting first makes the winner independent of template
// enumeration order; the perturbation already guarantees distinct scores.
func (s *Service) pick(
	probe feature.Vector, m modality.Modality, candidates []Candidate, scanned int,
) Resolution {
	if len(candidates) == 0 {
		return Resolution{Scanned: scanned}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Identity < candidates[j].Identity
	})

	best := candidates[0]
	if tb, ok := s.tieBreakers[m]; ok && !probe.IsZero() {
		for _, challenger := range candidates[1:] {
			if challenger.Score <= best.Score-s.contestMargin {
				break
			}
			if adjusted, wins := tb.Contest(probe, best, challenger); wins {
				best = Candidate{Identity: challenger.Identity, Score: adjusted}
			}
		}
	}

	confidence := best.Score
	if confidence > 1 {
		confidence = 1
	}

	threshold := s.thresholds[m]
	res := Resolution{
		Accepted:   confidence >= threshold,
		Confidence: confidence,
		Scanned:    scanned,
	}
	if res.Accepted {
		res.Identity = best.Identity
		s.logger.Info("Biometric match found",
			zap.String("modality", m.String()),
			zap.Int64("identity", best.Identity),
			zap.Float64("confidence", confidence),
		)
	} else {
		s.logger.Info("No biometric match",
			zap.String("modality", m.String()),
			zap.Float64("best_score", confidence),
			zap.Float64("threshold", threshold),
		)
	}
	return res
}
