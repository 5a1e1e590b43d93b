package score

import (
	"math"

	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

const voiceCap = 0.95

// pitchNormHz normalizes the fundamental-frequency difference; a 150 Hz
// gap between two speakers counts as fully dissimilar.
const pitchNormHz = 150.0

// weightedFeature is one entry of a voice weight table.
type weightedFeature struct {
	name   string
	weight float64
	series bool
}

// voiceWeights is the full-tier table. MFCC means dominate; pitch is the
// strongest single scalar discriminator between speakers.
var voiceWeights = []weightedFeature{
	{feature.MFCCCoefficients, 0.50, true},
	{feature.MFCCStd, 0.20, true},
	{feature.F0PitchMean, 0.25, false},
	{feature.SpectralCentroid, 0.05, false},
	{feature.SpectralRolloff, 0.05, false},
	{feature.SpectralBandwidth, 0.05, false},
	{feature.SpectralContrast, 0.05, true},
	{feature.RMSEnergy, 0.04, false},
	{feature.ZeroCrossingRate, 0.04, false},
	{feature.SpectralCentroidStd, 0.03, false},
	{feature.SpectralRolloffStd, 0.03, false},
	{feature.ZeroCrossingStd, 0.03, false},
	{feature.RMSEnergyStd, 0.03, false},
	{feature.EstimatedTempo, 0.02, false},
	{feature.Duration, 0.02, false},
	{feature.HarmonicMean, 0.02, false},
	{feature.PercussiveMean, 0.02, false},
}

// reducedWeights covers vectors from the fallback extraction tier.
var reducedWeights = []weightedFeature{
	{feature.AudioLength, 0.4, false},
	{feature.AvgValue, 0.3, false},
	{feature.Variance, 0.3, false},
}

// VoiceScorer aggregates weighted per-sub-feature similarities. A probe
// is rejected outright (score 0) when fewer than half of the expected
// sub-feature weight was comparable, even if the partial score is high:
// a handful of coincidentally similar sub-features is not a match.
type VoiceScorer struct{}

// NewVoiceScorer creates a voice scorer.
func NewVoiceScorer() *VoiceScorer { return &VoiceScorer{} }

// Modality returns the voice modality.
func (s *VoiceScorer) Modality() modality.Modality { return modality.Voice }

// Score aggregates the weight table matching the vectors' tier.
// Reduced vectors on either side select the fallback table.
func (s *VoiceScorer) Score(probe, stored feature.Vector) float64 {
	table := voiceWeights
	if probe.Reduced() || stored.Reduced() {
		table = reducedWeights
	}

	var total, weightSum, tableWeight float64
	for _, wf := range table {
		tableWeight += wf.weight
		sim, ok := compareFeature(probe, stored, wf)
		if !ok {
			continue
		}
		total += sim * wf.weight
		weightSum += wf.weight
	}

	if weightSum == 0 {
		return 0
	}
	if weightSum < tableWeight/2 {
		return 0
	}

	sim := total / weightSum
	if sim > voiceCap {
		sim = voiceCap
	}
	return clamp01(sim)
}

// compareFeature scores one sub-feature present on both sides.
func compareFeature(probe, stored feature.Vector, wf weightedFeature) (float64, bool) {
	if wf.series {
		a, okA := probe.Series(wf.name)
		b, okB := stored.Series(wf.name)
		if !okA || !okB {
			return 0, false
		}
		return Cosine(a, b), true
	}

	a, okA := probe.Scalar(wf.name)
	b, okB := stored.Scalar(wf.name)
	if !okA || !okB {
		return 0, false
	}
	if wf.name == feature.F0PitchMean {
		if math.Max(a, b) <= 0 {
			return 0, false
		}
		return clamp01(1 - math.Min(1, math.Abs(a-b)/pitchNormHz)), true
	}
	return ScalarSimilarity(a, b), true
}
