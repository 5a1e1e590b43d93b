package extract

import (
	"math"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// minVoiceBytes is the floor below which a capture cannot be a usable
// recording.
const minVoiceBytes = 1000

// Pitch tracking window.
const (
	pitchMinHz = 50.0
	pitchMaxHz = 500.0
	// Normalized autocorrelation below this marks a frame unvoiced.
	voicedThreshold = 0.3
)

const contrastBands = 6

// VoiceExtractor computes the full spectral/cepstral feature set from a
// PCM capture. When the capture cannot be decoded as audio it falls back
// to three basic byte statistics instead of failing outright, keeping
// voice enrollment and validation available under noisy input.
type VoiceExtractor struct{}

// NewVoiceExtractor creates a voice extractor.
func NewVoiceExtractor() *VoiceExtractor { return &VoiceExtractor{} }

// Modality returns the voice modality.
func (e *VoiceExtractor) Modality() modality.Modality { return modality.Voice }

// Extract runs the two-tier extraction. Captures under minVoiceBytes fail
// with ErrCaptureTooShort before any decoding.
func (e *VoiceExtractor) Extract(capture []byte) (feature.Vector, error) {
	if len(capture) < minVoiceBytes {
		return feature.Vector{}, domain.ErrCaptureTooShort
	}

	samples, sampleRate, err := decodeWAV(capture)
	if err != nil || len(samples) < frameLen {
		return reducedVoiceVector(capture)
	}

	return fullVoiceVector(samples, float64(sampleRate))
}

// reducedVoiceVector is the fallback tier: raw byte statistics only.
func reducedVoiceVector(capture []byte) (feature.Vector, error) {
	var mean float64
	for _, b := range capture {
		mean += float64(b)
	}
	mean /= float64(len(capture))
	var variance float64
	for _, b := range capture {
		d := float64(b) - mean
		variance += d * d
	}
	variance /= float64(len(capture))

	return feature.NewReduced(modality.Voice, map[string]float64{
		feature.AudioLength: float64(len(capture)),
		feature.AvgValue:    mean,
		feature.Variance:    variance,
	})
}

// fullVoiceVector computes the complete feature set over framed spectra.
func fullVoiceVector(samples []float64, sampleRate float64) (feature.Vector, error) {
	window := hammingWindow(frameLen)
	numFrames := 1 + (len(samples)-frameLen)/frameHop

	spectra := make([][]float64, numFrames)
	zcrs := make([]float64, numFrames)
	rmss := make([]float64, numFrames)
	centroids := make([]float64, numFrames)
	rolloffs := make([]float64, numFrames)
	bandwidths := make([]float64, numFrames)
	pitches := make([]float64, 0, numFrames)

	mfccTotals := make([]float64, mfccCount)
	mfccFrames := make([][]float64, numFrames)
	bank := melFilterbank(melFilters, frameLen/2+1, sampleRate)

	for f := 0; f < numFrames; f++ {
		frame := samples[f*frameHop : f*frameHop+frameLen]
		mag := magnitudeSpectrum(frame, window)
		spectra[f] = mag

		zcrs[f] = zeroCrossingRate(frame)
		rmss[f] = rootMeanSquare(frame)
		centroids[f] = spectralCentroid(mag, sampleRate)
		rolloffs[f] = spectralRolloff(mag, sampleRate, 0.85)
		bandwidths[f] = spectralBandwidth(mag, sampleRate, centroids[f])

		coeffs := mfccFrame(mag, bank)
		mfccFrames[f] = coeffs
		for i, c := range coeffs {
			mfccTotals[i] += c
		}

		if hz, voiced := framePitch(frame, sampleRate); voiced {
			pitches = append(pitches, hz)
		}
	}

	mfccMean := make([]float64, mfccCount)
	for i := range mfccMean {
		mfccMean[i] = mfccTotals[i] / float64(numFrames)
	}
	mfccStd := make([]float64, mfccCount)
	for i := range mfccStd {
		var sum float64
		for _, coeffs := range mfccFrames {
			d := coeffs[i] - mfccMean[i]
			sum += d * d
		}
		mfccStd[i] = math.Sqrt(sum / float64(numFrames))
	}

	centroidMean, centroidStd := seriesMeanStd(centroids)
	rolloffMean, rolloffStd := seriesMeanStd(rolloffs)
	bandwidthMean, _ := seriesMeanStd(bandwidths)
	zcrMean, zcrStd := seriesMeanStd(zcrs)
	rmsMean, rmsStd := seriesMeanStd(rmss)

	f0Mean, f0Std := seriesMeanStd(pitches)

	harmonicMean, percussiveMean := harmonicPercussiveMeans(samples)

	scalars := map[string]float64{
		feature.SpectralCentroid:    centroidMean,
		feature.SpectralCentroidStd: centroidStd,
		feature.SpectralRolloff:     rolloffMean,
		feature.SpectralRolloffStd:  rolloffStd,
		feature.SpectralBandwidth:   bandwidthMean,
		feature.ZeroCrossingRate:    zcrMean,
		feature.ZeroCrossingStd:     zcrStd,
		feature.RMSEnergy:           rmsMean,
		feature.RMSEnergyStd:        rmsStd,
		feature.HarmonicMean:        harmonicMean,
		feature.PercussiveMean:      percussiveMean,
		feature.F0PitchMean:         f0Mean,
		feature.F0PitchStd:          f0Std,
		feature.EstimatedTempo:      estimateTempo(spectra, sampleRate),
		feature.Duration:            float64(len(samples)) / sampleRate,
	}
	series := map[string][]float64{
		feature.MFCCCoefficients: mfccMean,
		feature.MFCCStd:          mfccStd,
		feature.SpectralContrast: spectralContrast(spectra),
		feature.ChromaFeatures:   chromaVector(spectra, sampleRate),
	}
	return feature.New(modality.Voice, scalars, series)
}

func zeroCrossingRate(frame []float64) float64 {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

func rootMeanSquare(frame []float64) float64 {
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func spectralCentroid(mag []float64, sampleRate float64) float64 {
	var weighted, total float64
	for i, m := range mag {
		weighted += binFrequency(i, len(mag), sampleRate) * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func spectralRolloff(mag []float64, sampleRate, fraction float64) float64 {
	var total float64
	for _, m := range mag {
		total += m
	}
	if total == 0 {
		return 0
	}
	var cum float64
	for i, m := range mag {
		cum += m
		if cum >= fraction*total {
			return binFrequency(i, len(mag), sampleRate)
		}
	}
	return binFrequency(len(mag)-1, len(mag), sampleRate)
}

func spectralBandwidth(mag []float64, sampleRate, centroid float64) float64 {
	var weighted, total float64
	for i, m := range mag {
		d := binFrequency(i, len(mag), sampleRate) - centroid
		weighted += m * d * d
		total += m
	}
	if total == 0 {
		return 0
	}
	return math.Sqrt(weighted / total)
}

func binFrequency(bin, numBins int, sampleRate float64) float64 {
	return float64(bin) / float64(numBins-1) * sampleRate / 2
}

// mfccFrame applies the mel filterbank, log compression and DCT-II.
func mfccFrame(mag []float64, bank [][]float64) []float64 {
	logEnergies := make([]float64, len(bank))
	for f, filter := range bank {
		var energy float64
		for b, w := range filter {
			if w > 0 {
				energy += mag[b] * mag[b] * w
			}
		}
		logEnergies[f] = math.Log(energy + 1e-10)
	}
	return dctII(logEnergies, mfccCount)
}

// spectralContrast returns per-band peak-to-valley log differences,
// averaged across frames.
func spectralContrast(spectra [][]float64) []float64 {
	contrast := make([]float64, contrastBands)
	if len(spectra) == 0 {
		return contrast
	}
	numBins := len(spectra[0])
	for _, mag := range spectra {
		for band := 0; band < contrastBands; band++ {
			lo := band * numBins / contrastBands
			hi := (band + 1) * numBins / contrastBands
			peak, valley := 0.0, math.MaxFloat64
			for b := lo; b < hi; b++ {
				if mag[b] > peak {
					peak = mag[b]
				}
				if mag[b] < valley {
					valley = mag[b]
				}
			}
			contrast[band] += math.Log(peak+1e-10) - math.Log(valley+1e-10)
		}
	}
	for i := range contrast {
		contrast[i] /= float64(len(spectra))
	}
	return contrast
}

// chromaVector folds spectrum energy into 12 pitch classes.
func chromaVector(spectra [][]float64, sampleRate float64) []float64 {
	chroma := make([]float64, 12)
	if len(spectra) == 0 {
		return chroma
	}
	numBins := len(spectra[0])
	for _, mag := range spectra {
		for b := 1; b < numBins; b++ {
			freq := binFrequency(b, numBins, sampleRate)
			if freq < 27.5 { // below A0, no meaningful pitch class
				continue
			}
			midi := 69 + 12*math.Log2(freq/440)
			class := ((int(math.Round(midi)) % 12) + 12) % 12
			chroma[class] += mag[b]
		}
	}
	var total float64
	for _, v := range chroma {
		total += v
	}
	if total > 0 {
		for i := range chroma {
			chroma[i] /= total
		}
	}
	return chroma
}

// framePitch estimates the fundamental frequency of one frame by
// normalized autocorrelation over the 50–500 Hz lag window.
func framePitch(frame []float64, sampleRate float64) (float64, bool) {
	minLag := int(sampleRate / pitchMaxHz)
	maxLag := int(sampleRate / pitchMinHz)
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0, false
	}

	var energy float64
	for _, v := range frame {
		energy += v * v
	}
	if energy == 0 {
		return 0, false
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		corr /= energy
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestCorr < voicedThreshold || bestLag == 0 {
		return 0, false
	}
	return sampleRate / float64(bestLag), true
}

// estimateTempo autocorrelates the onset envelope (positive spectral
// flux) and searches lags corresponding to 40–200 BPM.
func estimateTempo(spectra [][]float64, sampleRate float64) float64 {
	if len(spectra) < 4 {
		return 0
	}
	onset := make([]float64, len(spectra))
	for f := 1; f < len(spectra); f++ {
		var flux float64
		for b := range spectra[f] {
			d := spectra[f][b] - spectra[f-1][b]
			if d > 0 {
				flux += d
			}
		}
		onset[f] = flux
	}

	framesPerSec := sampleRate / frameHop
	minLag := int(framesPerSec * 60 / 200)
	maxLag := int(framesPerSec * 60 / 40)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if minLag >= maxLag {
		return 0
	}

	bestLag, bestCorr := minLag, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(onset); i++ {
			corr += onset[i] * onset[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	return 60 * framesPerSec / float64(bestLag)
}

// harmonicPercussiveMeans splits the signal into a smooth (harmonic)
// component via a moving average and a residual (percussive) component.
func harmonicPercussiveMeans(samples []float64) (harmonic, percussive float64) {
	const span = 31
	half := span / 2
	var hSum, pSum float64
	for i := range samples {
		lo := clampInt(i-half, 0, len(samples)-1)
		hi := clampInt(i+half, 0, len(samples)-1)
		var window float64
		for j := lo; j <= hi; j++ {
			window += samples[j]
		}
		h := window / float64(hi-lo+1)
		hSum += h
		pSum += samples[i] - h
	}
	n := float64(len(samples))
	return hSum / n, pSum / n
}
