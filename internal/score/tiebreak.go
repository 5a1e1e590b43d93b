package score

import (
	"fmt"
	"hash/fnv"

	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// Perturbation bounds. Kept an order of magnitude below the resolver's
// replace margin so the perturbation can break exact ties but never
// outweighs a confidently better candidate.
const (
	perturbFloor = 1e-3
	perturbSpan  = 1e-3
)

// Perturbation returns a stable per-candidate offset in [1e-3, 2e-3).
// Two candidates with numerically identical raw scores therefore never
// tie, and reruns with shuffled template order pick the same winner.
func Perturbation(identity int64, m modality.Modality) float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", m, identity)
	return perturbFloor + float64(h.Sum64()%1000)/1000*perturbSpan
}
