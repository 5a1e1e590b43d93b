package extract

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// makeWAV encodes PCM16 samples as a minimal RIFF/WAVE stream.
// Multi-channel input interleaves the same samples on every channel.
func makeWAV(t *testing.T, samples []float64, sampleRate, channels int) []byte {
	t.Helper()
	dataLen := len(samples) * 2 * channels
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2*channels))
	binary.Write(&buf, binary.LittleEndian, uint16(2*channels))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range samples {
		v := int16(math.Max(-1, math.Min(1, s)) * 32767)
		for c := 0; c < channels; c++ {
			binary.Write(&buf, binary.LittleEndian, v)
		}
	}
	return buf.Bytes()
}

// sineWave generates n samples of a freq Hz tone at half amplitude.
func sineWave(freq float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// skinToneImage draws a skin-toned rectangle on a blue background; the
// rectangle satisfies the detector's size and aspect constraints.
func skinToneImage(t *testing.T, w, h int, face image.Rectangle) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	background := color.RGBA{R: 20, G: 40, B: 200, A: 255}
	skin := color.RGBA{R: 200, G: 150, B: 120, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(face) {
				img.Set(x, y, skin)
			} else {
				img.Set(x, y, background)
			}
		}
	}
	return encodePNG(t, img)
}

// flatImage fills a w×h canvas with one color.
func flatImage(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return encodePNG(t, img)
}
