package validate

import (
	"context"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/usecase/enroll"
	"github.com/kailas-cloud/biogate/internal/usecase/match"
)

// Resolver matches a probe against enrolled templates.
type Resolver interface {
	Resolve(ctx context.Context, probe feature.Vector) (match.Resolution, error)
	ResolveProximity(ctx context.Context, probe domain.ProximitySet) (match.Resolution, error)
}

// AccessRecorder appends authentication attempts to the access log.
// Recording is best-effort; a failed append never blocks a decision.
type AccessRecorder interface {
	Record(ctx context.Context, entry domain.AccessEntry) error
}

// IdentityReader discloses identity profiles and owned vehicles after a
// successful match.
type IdentityReader interface {
	GetIdentity(ctx context.Context, id int64) (domain.Identity, error)
	ListOwnedVehicles(ctx context.Context, id int64) ([]domain.Vehicle, error)
}

// SessionGuard checks a resolved identity against the caller's session
// hint.
type SessionGuard interface {
	Check(hint *domain.SessionHint, identity int64) bool
}

// Request is one validation attempt. Exactly one of Capture (biometric
// modalities) or Proximity (proximity modality) carries the probe.
type Request struct {
	Modality   modality.Modality
	Capture    []byte
	Proximity  *enroll.ProximityIdentifiers
	Hint       *domain.SessionHint
	SourceAddr string
}

// Result pairs the decision with the disclosed identity data. Identity
// and Vehicles are set only on an accepted decision.
type Result struct {
	Decision domain.Decision
	Identity *domain.Identity
	Vehicles []domain.Vehicle
}
