package extract

import "math"

// Frame geometry for spectral analysis. 1024-sample frames with 50%
// overlap keep pitch resolution usable down to the 50 Hz tracking floor
// at common capture rates.
const (
	frameLen = 1024
	frameHop = 512

	melFilters = 26
	mfccCount  = 20
)

// hammingWindow returns a Hamming window of length n.
func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// fft computes an in-place iterative radix-2 FFT. len(re) must be a
// power of two.
func fft(re, im []float64) {
	n := len(re)
	// Bit reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
	for length := 2; length <= n; length <<= 1 {
		ang := -2 * math.Pi / float64(length)
		wR, wI := math.Cos(ang), math.Sin(ang)
		for start := 0; start < n; start += length {
			curR, curI := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				i, j := start+k, start+k+length/2
				tR := re[j]*curR - im[j]*curI
				tI := re[j]*curI + im[j]*curR
				re[j], im[j] = re[i]-tR, im[i]-tI
				re[i], im[i] = re[i]+tR, im[i]+tI
				curR, curI = curR*wR-curI*wI, curR*wI+curI*wR
			}
		}
	}
}

// magnitudeSpectrum returns |FFT| for the first n/2+1 bins of a
// windowed frame.
func magnitudeSpectrum(frame, window []float64) []float64 {
	n := len(frame)
	re := make([]float64, n)
	im := make([]float64, n)
	for i, v := range frame {
		re[i] = v * window[i]
	}
	fft(re, im)
	mag := make([]float64, n/2+1)
	for i := range mag {
		mag[i] = math.Hypot(re[i], im[i])
	}
	return mag
}

// melScale converts Hz to mel.
func melScale(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

// melInverse converts mel to Hz.
func melInverse(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds triangular filters over the magnitude bins.
func melFilterbank(numFilters, numBins int, sampleRate float64) [][]float64 {
	maxMel := melScale(sampleRate / 2)
	points := make([]float64, numFilters+2)
	for i := range points {
		hz := melInverse(maxMel * float64(i) / float64(numFilters+1))
		points[i] = hz / (sampleRate / 2) * float64(numBins-1)
	}

	bank := make([][]float64, numFilters)
	for f := 0; f < numFilters; f++ {
		filter := make([]float64, numBins)
		lo, mid, hi := points[f], points[f+1], points[f+2]
		for b := 0; b < numBins; b++ {
			x := float64(b)
			switch {
			case x > lo && x <= mid && mid > lo:
				filter[b] = (x - lo) / (mid - lo)
			case x > mid && x < hi && hi > mid:
				filter[b] = (hi - x) / (hi - mid)
			}
		}
		bank[f] = filter
	}
	return bank
}

// dctII computes the first count coefficients of the DCT-II of input.
func dctII(input []float64, count int) []float64 {
	n := len(input)
	out := make([]float64, count)
	for k := 0; k < count && k < n; k++ {
		var sum float64
		for i, v := range input {
			sum += v * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/float64(n))
		}
		out[k] = sum
	}
	return out
}

// seriesMeanStd returns mean and population std of a series.
func seriesMeanStd(vals []float64) (mean, std float64) {
	n := float64(len(vals))
	if n == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= n
	for _, v := range vals {
		d := v - mean
		std += d * d
	}
	return mean, math.Sqrt(std / n)
}
