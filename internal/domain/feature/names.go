package feature

// Canonical sub-feature names shared by the extractors and scorers.
// Templates persist these names, so renaming any of them invalidates
// enrolled vectors.
const (
	// Face.
	HOGDescriptor  = "hog_descriptor"
	ColorHistogram = "color_histogram"

	// Voice, full tier.
	MFCCCoefficients    = "mfcc_coefficients"
	MFCCStd             = "mfcc_std"
	SpectralCentroid    = "spectral_centroid"
	SpectralCentroidStd = "spectral_centroid_std"
	SpectralRolloff     = "spectral_rolloff"
	SpectralRolloffStd  = "spectral_rolloff_std"
	SpectralBandwidth   = "spectral_bandwidth"
	SpectralContrast    = "spectral_contrast"
	ChromaFeatures      = "chroma_features"
	ZeroCrossingRate    = "zero_crossing_rate"
	ZeroCrossingStd     = "zero_crossing_std"
	RMSEnergy           = "rms_energy"
	RMSEnergyStd        = "rms_energy_std"
	HarmonicMean        = "harmonic_mean"
	PercussiveMean      = "percussive_mean"
	F0PitchMean         = "f0_pitch_mean"
	F0PitchStd          = "f0_pitch_std"
	EstimatedTempo      = "estimated_tempo"
	Duration            = "duration"

	// Voice, reduced fallback tier.
	AudioLength = "audio_length"
	AvgValue    = "avg_value"
	Variance    = "variance"

	// Retina.
	EdgeDensity      = "edge_density"
	MeanIntensity    = "mean_intensity"
	StdIntensity     = "std_intensity"
	NumCircles       = "num_circles"
	MainCircleX      = "main_circle_x"
	MainCircleY      = "main_circle_y"
	MainCircleRadius = "main_circle_radius"
)
