package score

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

func mustVector(t *testing.T, m modality.Modality, scalars map[string]float64, series map[string][]float64) feature.Vector {
	t.Helper()
	v, err := feature.New(m, scalars, series)
	require.NoError(t, err)
	return v
}

func mustReduced(t *testing.T, scalars map[string]float64) feature.Vector {
	t.Helper()
	v, err := feature.NewReduced(modality.Voice, scalars)
	require.NoError(t, err)
	return v
}

// fullVoiceVector builds a vector carrying every full-tier sub-feature.
func fullVoiceVector(t *testing.T, pitch float64) feature.Vector {
	t.Helper()
	scalars := map[string]float64{
		feature.F0PitchMean:         pitch,
		feature.SpectralCentroid:    1800,
		feature.SpectralRolloff:     3600,
		feature.SpectralBandwidth:   1200,
		feature.RMSEnergy:           0.12,
		feature.ZeroCrossingRate:    0.08,
		feature.SpectralCentroidStd: 220,
		feature.SpectralRolloffStd:  410,
		feature.ZeroCrossingStd:     0.01,
		feature.RMSEnergyStd:        0.02,
		feature.EstimatedTempo:      96,
		feature.Duration:            2.4,
		feature.HarmonicMean:        0.05,
		feature.PercussiveMean:      0.01,
	}
	series := map[string][]float64{
		feature.MFCCCoefficients: {12, -3, 4, 1, 0.5, -0.2, 2, 1.1, -0.6, 0.9},
		feature.MFCCStd:          {2, 1.5, 1, 0.8, 0.6, 0.5, 0.4, 0.4, 0.3, 0.3},
		feature.SpectralContrast: {18, 15, 14, 13, 12, 11},
	}
	return mustVector(t, modality.Voice, scalars, series)
}
