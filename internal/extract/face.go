package extract

import (
	"image"
	"image/color"
	"math"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// Face canvas and HOG geometry: 128×128 canvas, 8×8 cells, 9 unsigned
// orientation bins, 2×2 cell blocks with single-cell stride.
const (
	faceCanvas   = 128
	hogCellSize  = 8
	hogBins      = 9
	hogBlockSpan = 2

	minFaceSide = 20

	histogramBins = 64
)

// FaceExtractor locates a face region and computes a gradient-orientation
// histogram descriptor over it. A color histogram of the region is also
// produced, but it is not part of the comparison contract.
type FaceExtractor struct{}

// NewFaceExtractor creates a face extractor.
func NewFaceExtractor() *FaceExtractor { return &FaceExtractor{} }

// Modality returns the face modality.
func (e *FaceExtractor) Modality() modality.Modality { return modality.Face }

// Extract decodes the capture, finds the first face region in detector
// order, and computes the descriptor over the fixed canvas.
func (e *FaceExtractor) Extract(capture []byte) (feature.Vector, error) {
	img, err := decodeImage(capture)
	if err != nil {
		return feature.Vector{}, err
	}

	regions := detectFaceRegions(img)
	if len(regions) == 0 {
		return feature.Vector{}, domain.ErrNoFaceDetected
	}

	// Multiple regions: deterministically the first in detector order.
	region := cropGray(img, regions[0])
	canvas := resizeGray(region, faceCanvas, faceCanvas)

	descriptor := hogDescriptor(canvas)
	histogram := grayHistogram(canvas)

	return feature.New(modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor:  descriptor,
		feature.ColorHistogram: histogram,
	})
}

// detectFaceRegions segments skin-toned areas into candidate boxes,
// ordered left to right (detector scan order). The YCbCr skin window is
// the usual Cb∈[77,127], Cr∈[133,173].
func detectFaceRegions(img image.Image) []image.Rectangle {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < minFaceSide || h < minFaceSide {
		return nil
	}

	mask := make([]bool, w*h)
	colCounts := make([]int, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			_, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			if cb >= 77 && cb <= 127 && cr >= 133 && cr <= 173 {
				mask[y*w+x] = true
				colCounts[x]++
			}
		}
	}

	minColHits := h / 20
	if minColHits < 2 {
		minColHits = 2
	}

	var regions []image.Rectangle
	x := 0
	for x < w {
		if colCounts[x] <= minColHits {
			x++
			continue
		}
		x0 := x
		for x < w && colCounts[x] > minColHits {
			x++
		}
		x1 := x // exclusive
		if rect, ok := rowBounds(mask, w, h, x0, x1); ok {
			regions = append(regions, rect.Add(b.Min))
		}
	}
	return regions
}

// rowBounds finds the vertical extent of a skin column band and applies
// minimum-size and aspect constraints.
func rowBounds(mask []bool, w, h, x0, x1 int) (image.Rectangle, bool) {
	minRowHits := (x1 - x0) / 20
	if minRowHits < 2 {
		minRowHits = 2
	}
	y0, y1 := -1, -1
	for y := 0; y < h; y++ {
		hits := 0
		for x := x0; x < x1; x++ {
			if mask[y*w+x] {
				hits++
			}
		}
		if hits > minRowHits {
			if y0 < 0 {
				y0 = y
			}
			y1 = y + 1
		}
	}
	if y0 < 0 {
		return image.Rectangle{}, false
	}
	rect := image.Rect(x0, y0, x1, y1)
	if rect.Dx() < minFaceSide || rect.Dy() < minFaceSide {
		return image.Rectangle{}, false
	}
	aspect := float64(rect.Dx()) / float64(rect.Dy())
	if aspect < 0.4 || aspect > 2.5 {
		return image.Rectangle{}, false
	}
	return rect, true
}

// cropGray extracts a grayscale sub-plane for a region.
func cropGray(img image.Image, rect image.Rectangle) *grayImage {
	g := newGrayImage(rect.Dx(), rect.Dy())
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			r, gr, bl, _ := img.At(rect.Min.X+x, rect.Min.Y+y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(bl>>8)
			g.set(x, y, lum)
		}
	}
	return g
}

// hogDescriptor computes cell orientation histograms over the canvas and
// L2-normalizes them in overlapping 2×2 blocks.
func hogDescriptor(canvas *grayImage) []float64 {
	gx, gy := sobel(canvas)
	cells := faceCanvas / hogCellSize

	// Per-cell unsigned orientation histograms.
	hist := make([][]float64, cells*cells)
	for i := range hist {
		hist[i] = make([]float64, hogBins)
	}
	for y := 0; y < canvas.h; y++ {
		for x := 0; x < canvas.w; x++ {
			dx, dy := gx.at(x, y), gy.at(x, y)
			mag := math.Hypot(dx, dy)
			if mag == 0 {
				continue
			}
			angle := math.Atan2(dy, dx)
			if angle < 0 {
				angle += math.Pi
			}
			bin := int(angle / math.Pi * hogBins)
			if bin >= hogBins {
				bin = hogBins - 1
			}
			cell := (y/hogCellSize)*cells + x/hogCellSize
			hist[cell][bin] += mag
		}
	}

	// Overlapping block normalization.
	blocks := cells - hogBlockSpan + 1
	descriptor := make([]float64, 0, blocks*blocks*hogBlockSpan*hogBlockSpan*hogBins)
	for by := 0; by < blocks; by++ {
		for bx := 0; bx < blocks; bx++ {
			block := make([]float64, 0, hogBlockSpan*hogBlockSpan*hogBins)
			var norm float64
			for cy := 0; cy < hogBlockSpan; cy++ {
				for cx := 0; cx < hogBlockSpan; cx++ {
					cell := hist[(by+cy)*cells+bx+cx]
					block = append(block, cell...)
					for _, v := range cell {
						norm += v * v
					}
				}
			}
			norm = math.Sqrt(norm) + 1e-6
			for _, v := range block {
				descriptor = append(descriptor, v/norm)
			}
		}
	}
	return descriptor
}

// grayHistogram computes a 64-bin intensity histogram of the canvas.
func grayHistogram(canvas *grayImage) []float64 {
	hist := make([]float64, histogramBins)
	for _, v := range canvas.pix {
		bin := clampInt(int(v)*histogramBins/256, 0, histogramBins-1)
		hist[bin]++
	}
	return hist
}
