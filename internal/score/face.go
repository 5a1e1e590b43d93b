package score

import (
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

const faceCap = 0.98

// FaceScorer scores faces by cosine similarity over the HOG descriptor.
// The color histogram, when present, is deliberately not compared.
type FaceScorer struct{}

// NewFaceScorer creates a face scorer.
func NewFaceScorer() *FaceScorer { return &FaceScorer{} }

// Modality returns the face modality.
func (s *FaceScorer) Modality() modality.Modality { return modality.Face }

// Score returns the capped cosine similarity of the two descriptors,
// or 0 when either side lacks one.
func (s *FaceScorer) Score(probe, stored feature.Vector) float64 {
	a, okA := probe.Series(feature.HOGDescriptor)
	b, okB := stored.Series(feature.HOGDescriptor)
	if !okA || !okB {
		return 0
	}
	sim := Cosine(a, b)
	if sim > faceCap {
		sim = faceCap
	}
	return sim
}
