package score

import (
	"math"

	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

const retinaCap = 0.98

// Circle geometry weighting: center distance matters more than radius,
// and the combined geometry term counts double a scalar sub-feature.
const (
	circleCenterWeight = 0.7
	circleRadiusWeight = 0.3
	circleTermWeight   = 2.0
	circleCoordNorm    = 100.0
)

var retinaScalars = []string{
	feature.EdgeDensity,
	feature.MeanIntensity,
	feature.StdIntensity,
}

// RetinaScorer averages scalar intensity/edge similarities and, when both
// sides detected at least one circular structure, folds in an optic-disc
// geometry term.
type RetinaScorer struct{}

// NewRetinaScorer creates a retina scorer.
func NewRetinaScorer() *RetinaScorer { return &RetinaScorer{} }

// Modality returns the retina modality.
func (s *RetinaScorer) Modality() modality.Modality { return modality.Retina }

// Score returns the capped weighted average, or 0 when nothing is comparable.
func (s *RetinaScorer) Score(probe, stored feature.Vector) float64 {
	var total, weight float64

	for _, name := range retinaScalars {
		a, okA := probe.Scalar(name)
		b, okB := stored.Scalar(name)
		if !okA || !okB {
			continue
		}
		total += ScalarSimilarity(a, b)
		weight++
	}

	if sim, ok := circleSimilarity(probe, stored); ok {
		total += sim * circleTermWeight
		weight += circleTermWeight
	}

	if weight == 0 {
		return 0
	}
	sim := total / weight
	if sim > retinaCap {
		sim = retinaCap
	}
	return clamp01(sim)
}

// circleSimilarity combines normalized center distance and radius
// similarity. Only defined when both sides detected a circle.
func circleSimilarity(probe, stored feature.Vector) (float64, bool) {
	na, okA := probe.Scalar(feature.NumCircles)
	nb, okB := stored.Scalar(feature.NumCircles)
	if !okA || !okB || na < 1 || nb < 1 {
		return 0, false
	}

	coords := [3]string{feature.MainCircleX, feature.MainCircleY, feature.MainCircleRadius}
	var a, b [3]float64
	for i, name := range coords {
		av, okAV := probe.Scalar(name)
		bv, okBV := stored.Scalar(name)
		if !okAV || !okBV {
			return 0, false
		}
		a[i], b[i] = av, bv
	}

	dx := math.Abs(a[0]-b[0]) / circleCoordNorm
	dy := math.Abs(a[1]-b[1]) / circleCoordNorm
	distance := math.Hypot(dx, dy)

	radiusSim := 0.0
	if maxR := math.Max(a[2], b[2]); maxR > 0 {
		radiusSim = 1 - math.Abs(a[2]-b[2])/maxR
	}

	sim := (1-math.Min(1, distance))*circleCenterWeight + radiusSim*circleRadiusWeight
	return clamp01(sim), true
}
