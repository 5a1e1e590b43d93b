package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

func TestFaceScorer_IdenticalDescriptorCapped(t *testing.T) {
	hog := []float64{0.4, 0.1, 0.8, 0.3, 0.2}
	probe := mustVector(t, modality.Face, nil, map[string][]float64{feature.HOGDescriptor: hog})
	stored := mustVector(t, modality.Face, nil, map[string][]float64{feature.HOGDescriptor: hog})

	assert.InDelta(t, 0.98, NewFaceScorer().Score(probe, stored), 1e-9)
}

func TestFaceScorer_DifferentDescriptors(t *testing.T) {
	probe := mustVector(t, modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor: {1, 0, 0, 0},
	})
	stored := mustVector(t, modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor: {1, 1, 0, 0},
	})

	got := NewFaceScorer().Score(probe, stored)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 0.98)
}

func TestFaceScorer_MissingDescriptor(t *testing.T) {
	withHOG := mustVector(t, modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor: {0.4, 0.1, 0.8},
	})
	withoutHOG := mustVector(t, modality.Face, nil, map[string][]float64{
		feature.ColorHistogram: {10, 20, 30},
	})

	s := NewFaceScorer()
	assert.Zero(t, s.Score(withHOG, withoutHOG))
	assert.Zero(t, s.Score(withoutHOG, withHOG))
}

func TestFaceScorer_ColorHistogramIgnored(t *testing.T) {
	hog := []float64{0.4, 0.1, 0.8}
	probe := mustVector(t, modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor:  hog,
		feature.ColorHistogram: {1, 2, 3},
	})
	stored := mustVector(t, modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor:  hog,
		feature.ColorHistogram: {30, 20, 10},
	})

	assert.InDelta(t, 0.98, NewFaceScorer().Score(probe, stored), 1e-9)
}

func TestFaceScorer_Modality(t *testing.T) {
	assert.Equal(t, modality.Face, NewFaceScorer().Modality())
}
