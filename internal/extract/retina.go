package extract

import (
	"math"

	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// Circle detection tuning, matched to retina captures around 200px:
// optic-disc radii between 10 and 100, centers at least 50px apart.
const (
	circleMinRadius   = 10
	circleMaxRadius   = 100
	circleMinDistance = 50
	circleRadiusStep  = 3
	// Accumulator cell size in pixels; votes snap to this grid.
	circleGridCell = 4
	// Minimum votes for a center peak to count as a circle.
	circleMinVotes = 20

	edgeThreshold = 120.0
)

// RetinaExtractor normalizes and denoises the scan, then computes edge
// density, intensity statistics and circular-structure (optic disc)
// geometry.
type RetinaExtractor struct{}

// NewRetinaExtractor creates a retina extractor.
func NewRetinaExtractor() *RetinaExtractor { return &RetinaExtractor{} }

// Modality returns the retina modality.
func (e *RetinaExtractor) Modality() modality.Modality { return modality.Retina }

// Extract decodes the scan and computes the retina feature set.
// Intensity statistics come from the raw grayscale plane; edges and
// circles from the equalized, blurred plane.
func (e *RetinaExtractor) Extract(capture []byte) (feature.Vector, error) {
	img, err := decodeImage(capture)
	if err != nil {
		return feature.Vector{}, err
	}

	gray := toGray(img)
	mean, std := meanStd(gray)

	blurred := gaussianBlur(equalizeGray(gray))
	gx, gy := sobel(blurred)

	edges := make([]bool, len(blurred.pix))
	edgeCount := 0
	for i := range edges {
		if math.Hypot(gx.pix[i], gy.pix[i]) >= edgeThreshold {
			edges[i] = true
			edgeCount++
		}
	}

	scalars := map[string]float64{
		feature.EdgeDensity:   float64(edgeCount) / float64(len(edges)),
		feature.MeanIntensity: mean,
		feature.StdIntensity:  std,
	}

	circles := houghCircles(blurred.w, blurred.h, edges, gx, gy)
	scalars[feature.NumCircles] = float64(len(circles))
	if len(circles) > 0 {
		scalars[feature.MainCircleX] = float64(circles[0].x)
		scalars[feature.MainCircleY] = float64(circles[0].y)
		scalars[feature.MainCircleRadius] = float64(circles[0].r)
	}

	return feature.New(modality.Retina, scalars, nil)
}

type circleCandidate struct {
	x, y, r, votes int
}

// houghCircles runs a gradient-guided Hough transform: every edge pixel
// votes for centers along its gradient direction at the sampled radii,
// peaks become circles, and each peak's radius is the mode of edge
// distances around it. Results are ordered by vote count, so the primary
// circle is deterministic.
func houghCircles(w, h int, edges []bool, gx, gy *grayImage) []circleCandidate {
	cellsX := (w + circleGridCell - 1) / circleGridCell
	cellsY := (h + circleGridCell - 1) / circleGridCell
	acc := make([]int, cellsX*cellsY)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !edges[y*w+x] {
				continue
			}
			dx, dy := gx.at(x, y), gy.at(x, y)
			mag := math.Hypot(dx, dy)
			if mag == 0 {
				continue
			}
			ux, uy := dx/mag, dy/mag
			for r := circleMinRadius; r <= circleMaxRadius; r += circleRadiusStep {
				// Vote along both gradient senses; the disc may be
				// lighter or darker than its surround.
				for _, sign := range [2]float64{1, -1} {
					cx := x + int(sign*ux*float64(r))
					cy := y + int(sign*uy*float64(r))
					if cx < 0 || cx >= w || cy < 0 || cy >= h {
						continue
					}
					acc[(cy/circleGridCell)*cellsX+cx/circleGridCell]++
				}
			}
		}
	}

	peaks := findPeaks(acc, cellsX, cellsY)

	circles := make([]circleCandidate, 0, len(peaks))
	for _, p := range peaks {
		x := p.x*circleGridCell + circleGridCell/2
		y := p.y*circleGridCell + circleGridCell/2
		r := dominantRadius(w, h, edges, x, y)
		if r == 0 {
			continue
		}
		circles = append(circles, circleCandidate{x: x, y: y, r: r, votes: p.votes})
	}
	return circles
}

type peak struct {
	x, y, votes int
}

// findPeaks selects local accumulator maxima above the vote floor, enforcing
// the minimum center distance, strongest first.
func findPeaks(acc []int, cellsX, cellsY int) []peak {
	var candidates []peak
	for y := 0; y < cellsY; y++ {
		for x := 0; x < cellsX; x++ {
			v := acc[y*cellsX+x]
			if v < circleMinVotes {
				continue
			}
			isMax := true
			for dy := -1; dy <= 1 && isMax; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= cellsX || ny >= cellsY {
						continue
					}
					if acc[ny*cellsX+nx] > v {
						isMax = false
						break
					}
				}
			}
			if isMax {
				candidates = append(candidates, peak{x: x, y: y, votes: v})
			}
		}
	}

	// Strongest peaks win; ties resolve by scan order for determinism.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].votes > candidates[j-1].votes; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	minCellDist := circleMinDistance / circleGridCell
	var peaks []peak
	for _, c := range candidates {
		tooClose := false
		for _, kept := range peaks {
			dx, dy := c.x-kept.x, c.y-kept.y
			if dx*dx+dy*dy < minCellDist*minCellDist {
				tooClose = true
				break
			}
		}
		if !tooClose {
			peaks = append(peaks, c)
		}
	}
	return peaks
}

// dominantRadius returns the most common edge-pixel distance from the
// center within the radius window.
func dominantRadius(w, h int, edges []bool, cx, cy int) int {
	hist := make([]int, circleMaxRadius+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !edges[y*w+x] {
				continue
			}
			d := int(math.Round(math.Hypot(float64(x-cx), float64(y-cy))))
			if d >= circleMinRadius && d <= circleMaxRadius {
				hist[d]++
			}
		}
	}
	best, bestCount := 0, 0
	for r, count := range hist {
		if count > bestCount {
			best, bestCount = r, count
		}
	}
	if bestCount < 8 { // too few supporting edge pixels
		return 0
	}
	return best
}
