// Package extract turns raw sensor captures into fixed-schema feature
// vectors. One extractor per biometric modality; extraction either
// yields a complete vector or a typed failure, never a panic across the
// package boundary.
package extract

import (
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// Extractor produces a feature vector from a raw capture.
// Implementations are stateless and safe for concurrent use.
type Extractor interface {
	Modality() modality.Modality
	Extract(capture []byte) (feature.Vector, error)
}

// Set holds one extractor per biometric modality.
type Set struct {
	extractors map[modality.Modality]Extractor
}

// NewSet creates the default extractor set.
func NewSet() *Set {
	s := &Set{extractors: make(map[modality.Modality]Extractor)}
	for _, e := range []Extractor{NewFaceExtractor(), NewVoiceExtractor(), NewRetinaExtractor()} {
		s.extractors[e.Modality()] = e
	}
	return s
}

// NewSetOf creates a set from explicit extractors. Later extractors
// replace earlier ones for the same modality.
func NewSetOf(extractors ...Extractor) *Set {
	s := &Set{extractors: make(map[modality.Modality]Extractor, len(extractors))}
	for _, e := range extractors {
		s.extractors[e.Modality()] = e
	}
	return s
}

// For returns the extractor for a modality.
func (s *Set) For(m modality.Modality) (Extractor, bool) {
	e, ok := s.extractors[m]
	return e, ok
}
