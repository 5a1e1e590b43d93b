package extract

import (
	"bytes"
	"fmt"
	"image"
	// Registered decoders for the capture formats browsers produce.
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/kailas-cloud/biogate/internal/domain"
)

// grayImage is a dense float64 grayscale plane with values in [0, 255].
// Buffers are scoped to one extraction call and released with it.
type grayImage struct {
	w, h int
	pix  []float64
}

func newGrayImage(w, h int) *grayImage {
	return &grayImage{w: w, h: h, pix: make([]float64, w*h)}
}

func (g *grayImage) at(x, y int) float64 { return g.pix[y*g.w+x] }

func (g *grayImage) set(x, y int, v float64) { g.pix[y*g.w+x] = v }

// decodeImage decodes a capture into an image.Image.
func decodeImage(capture []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(capture))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadCapture, err)
	}
	return img, nil
}

// toGray converts an image to a grayscale plane using BT.601 luma.
func toGray(img image.Image) *grayImage {
	b := img.Bounds()
	g := newGrayImage(b.Dx(), b.Dy())
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			r, gr, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(bl>>8)
			g.set(x, y, lum)
		}
	}
	return g
}

// resizeGray scales a plane to w×h with bilinear interpolation.
func resizeGray(src *grayImage, w, h int) *grayImage {
	dst := newGrayImage(w, h)
	if src.w == 0 || src.h == 0 {
		return dst
	}
	xRatio := float64(src.w-1) / float64(max(w-1, 1))
	yRatio := float64(src.h-1) / float64(max(h-1, 1))
	for y := 0; y < h; y++ {
		sy := float64(y) * yRatio
		y0 := int(sy)
		y1 := min(y0+1, src.h-1)
		fy := sy - float64(y0)
		for x := 0; x < w; x++ {
			sx := float64(x) * xRatio
			x0 := int(sx)
			x1 := min(x0+1, src.w-1)
			fx := sx - float64(x0)
			top := src.at(x0, y0)*(1-fx) + src.at(x1, y0)*fx
			bot := src.at(x0, y1)*(1-fx) + src.at(x1, y1)*fx
			dst.set(x, y, top*(1-fy)+bot*fy)
		}
	}
	return dst
}

// equalizeGray applies 256-bin histogram equalization.
func equalizeGray(src *grayImage) *grayImage {
	var hist [256]int
	for _, v := range src.pix {
		hist[clampByte(v)]++
	}
	total := len(src.pix)
	if total == 0 {
		return src
	}
	var cdf [256]float64
	cum := 0
	for i, c := range hist {
		cum += c
		cdf[i] = float64(cum) / float64(total)
	}
	dst := newGrayImage(src.w, src.h)
	for i, v := range src.pix {
		dst.pix[i] = cdf[clampByte(v)] * 255
	}
	return dst
}

// gaussianBlur applies a separable 5-tap Gaussian (sigma ≈ 1).
func gaussianBlur(src *grayImage) *grayImage {
	kernel := [5]float64{1, 4, 6, 4, 1}
	const norm = 16.0

	tmp := newGrayImage(src.w, src.h)
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				xx := clampInt(x+k, 0, src.w-1)
				sum += src.at(xx, y) * kernel[k+2]
			}
			tmp.set(x, y, sum/norm)
		}
	}
	dst := newGrayImage(src.w, src.h)
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			var sum float64
			for k := -2; k <= 2; k++ {
				yy := clampInt(y+k, 0, src.h-1)
				sum += tmp.at(x, yy) * kernel[k+2]
			}
			dst.set(x, y, sum/norm)
		}
	}
	return dst
}

// sobel computes horizontal and vertical gradients.
func sobel(src *grayImage) (gx, gy *grayImage) {
	gx = newGrayImage(src.w, src.h)
	gy = newGrayImage(src.w, src.h)
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			p := func(dx, dy int) float64 {
				return src.at(clampInt(x+dx, 0, src.w-1), clampInt(y+dy, 0, src.h-1))
			}
			sx := -p(-1, -1) - 2*p(-1, 0) - p(-1, 1) + p(1, -1) + 2*p(1, 0) + p(1, 1)
			sy := -p(-1, -1) - 2*p(0, -1) - p(1, -1) + p(-1, 1) + 2*p(0, 1) + p(1, 1)
			gx.set(x, y, sx)
			gy.set(x, y, sy)
		}
	}
	return gx, gy
}

// meanStd returns the mean and population standard deviation of the plane.
func meanStd(src *grayImage) (mean, std float64) {
	n := float64(len(src.pix))
	if n == 0 {
		return 0, 0
	}
	for _, v := range src.pix {
		mean += v
	}
	mean /= n
	for _, v := range src.pix {
		d := v - mean
		std += d * d
	}
	return mean, math.Sqrt(std / n)
}

func clampByte(v float64) int {
	return clampInt(int(v), 0, 255)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
