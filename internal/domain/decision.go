package domain

import (
	"math"

	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// SessionHint is a caller-supplied identity accepted earlier in the same
// authentication flow. The core never stores it; the caller re-supplies it
// on every request.
type SessionHint struct {
	Identity int64
	Modality modality.Modality
}

// Decision is the structured outcome of one validation request.
// Identity is zero when no candidate was resolved.
type Decision struct {
	Accepted          bool      `json:"accepted"`
	Identity          int64     `json:"identity,omitempty"`
	Confidence        float64   `json:"confidence"`
	SecurityViolation bool      `json:"security_violation,omitempty"`
	ErrorKind         ErrorKind `json:"error_kind,omitempty"`
}

// RoundConfidence rounds a confidence to two decimals, the precision
// exposed to callers.
func RoundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}
