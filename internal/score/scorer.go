package score

import (
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// Scorer computes a bounded similarity between two feature vectors of
// one biometric modality. Implementations are pure and safe for
// concurrent use.
type Scorer interface {
	Modality() modality.Modality
	Score(probe, stored feature.Vector) float64
}

// Set holds one scorer per biometric modality.
type Set struct {
	scorers map[modality.Modality]Scorer
}

// NewSet creates the default scorer set.
func NewSet() *Set {
	s := &Set{scorers: make(map[modality.Modality]Scorer)}
	for _, sc := range []Scorer{NewFaceScorer(), NewVoiceScorer(), NewRetinaScorer()} {
		s.scorers[sc.Modality()] = sc
	}
	return s
}

// For returns the scorer for a modality.
func (s *Set) For(m modality.Modality) (Scorer, bool) {
	sc, ok := s.scorers[m]
	return sc, ok
}
