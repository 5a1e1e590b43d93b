package extract

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

func TestRetinaExtract_IntensityStatistics(t *testing.T) {
	capture := flatImage(t, 200, 200, color.Gray{Y: 90})

	vec, err := NewRetinaExtractor().Extract(capture)

	require.NoError(t, err)
	assert.Equal(t, modality.Retina, vec.Modality())

	mean, ok := vec.Scalar(feature.MeanIntensity)
	require.True(t, ok)
	assert.InDelta(t, 90, mean, 1)

	std, ok := vec.Scalar(feature.StdIntensity)
	require.True(t, ok)
	assert.InDelta(t, 0, std, 1)

	// A flat plane has no gradients at all.
	density, ok := vec.Scalar(feature.EdgeDensity)
	require.True(t, ok)
	assert.Zero(t, density)

	circles, ok := vec.Scalar(feature.NumCircles)
	require.True(t, ok)
	assert.Zero(t, circles)
}

func TestRetinaExtract_StructuredScanHasEdges(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			d := math.Hypot(float64(x-100), float64(y-100))
			v := uint8(40)
			if d < 80 {
				v = 215
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	capture := encodePNG(t, img)

	vec, err := NewRetinaExtractor().Extract(capture)

	require.NoError(t, err)
	density, ok := vec.Scalar(feature.EdgeDensity)
	require.True(t, ok)
	assert.Greater(t, density, 0.0)
	assert.Less(t, density, 0.5)

	std, _ := vec.Scalar(feature.StdIntensity)
	assert.Greater(t, std, 10.0)
}

func TestRetinaExtract_UndecodableCapture(t *testing.T) {
	_, err := NewRetinaExtractor().Extract([]byte{0xde, 0xad, 0xbe, 0xef})

	assert.ErrorIs(t, err, domain.ErrBadCapture)
}

// circularEdgeMap builds an edge ring of the given radius with radial
// gradients, the shape houghCircles is tuned for.
func circularEdgeMap(w, h, cx, cy, radius int) (edges []bool, gx, gy *grayImage) {
	edges = make([]bool, w*h)
	gx = newGrayImage(w, h)
	gy = newGrayImage(w, h)
	for i := 0; i < 720; i++ {
		angle := float64(i) * math.Pi / 360
		x := cx + int(math.Round(float64(radius)*math.Cos(angle)))
		y := cy + int(math.Round(float64(radius)*math.Sin(angle)))
		if x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		edges[y*w+x] = true
		gx.set(x, y, 100*math.Cos(angle))
		gy.set(x, y, 100*math.Sin(angle))
	}
	return edges, gx, gy
}

func TestHoughCircles_FindsRing(t *testing.T) {
	edges, gx, gy := circularEdgeMap(200, 200, 100, 100, 30)

	circles := houghCircles(200, 200, edges, gx, gy)

	require.NotEmpty(t, circles)
	primary := circles[0]
	assert.InDelta(t, 100, primary.x, 4)
	assert.InDelta(t, 100, primary.y, 4)
	assert.InDelta(t, 30, primary.r, 4)
}

func TestHoughCircles_EmptyEdgeMap(t *testing.T) {
	edges := make([]bool, 200*200)

	circles := houghCircles(200, 200, edges, newGrayImage(200, 200), newGrayImage(200, 200))

	assert.Empty(t, circles)
}

func TestDominantRadius_RequiresSupport(t *testing.T) {
	// Four isolated edge pixels are not enough evidence for a radius.
	edges := make([]bool, 200*200)
	for _, p := range []image.Point{{70, 100}, {130, 100}, {100, 70}, {100, 130}} {
		edges[p.Y*200+p.X] = true
	}

	assert.Zero(t, dominantRadius(200, 200, edges, 100, 100))
}
