package domain

import (
	"time"

	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// AccessEntry is one append-only record of an authentication attempt.
// Identity is zero only for a failed attempt with no resolved candidate.
type AccessEntry struct {
	ID         string            `json:"id"`
	Identity   int64             `json:"identity,omitempty"`
	Modality   modality.Modality `json:"modality"`
	Success    bool              `json:"success"`
	Vehicle    int64             `json:"vehicle,omitempty"`
	SourceAddr string            `json:"source_addr,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}
