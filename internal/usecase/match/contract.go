package match

import (
	"context"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// TemplateSource enumerates enrolled templates for a modality. The scan
// is read-only; the adapter guarantees atomic template replacement, so a
// concurrent enrollment yields either the old or new version, never a
// partial one.
type TemplateSource interface {
	ListTemplates(ctx context.Context, m modality.Modality) ([]domain.Template, error)
}

// Candidate is one (identity, perturbed score) pair produced while
// scanning. Transient; never persisted.
type Candidate struct {
	Identity int64
	Score    float64
}

// TieBreaker disambiguates near-ties between candidates using auxiliary
// discriminative sub-features. Returns the challenger's adjusted score
// and whether it displaces the incumbent.
type TieBreaker interface {
	Contest(probe feature.Vector, incumbent, challenger Candidate) (float64, bool)
}

// Resolution is the resolver outcome for one probe.
type Resolution struct {
	Accepted   bool
	Identity   int64
	Confidence float64
	// Scanned counts templates considered, including skipped corrupt ones.
	Scanned int
}
