package biogate

import (
	"time"

	validateuc "github.com/kailas-cloud/biogate/internal/usecase/validate"
)

// Identity is the profile disclosed on an accepted validation.
type Identity struct {
	ID            int64
	DisplayName   string
	EnrolledSince time.Time
}

// Vehicle is one vehicle owned by an identity.
type Vehicle struct {
	ID    int64
	Make  string
	Model string
	Year  int
	Plate string
	VIN   string
	Color string
}

// ProximityIdentifiers are the raw identifiers presented by a proximity
// device. The client hashes them before they reach storage or matching.
type ProximityIdentifiers struct {
	KeyFob        string
	MobileDevice  string
	BluetoothAddr string
	NFCTag        string
}

// SessionHint is an identity accepted earlier in the same authentication
// flow, re-supplied by the caller on every request.
type SessionHint struct {
	Identity int64
	Modality string
}

// ValidationRequest is one authentication probe. Capture carries the raw
// capture for biometric modalities; Proximity carries identifiers for the
// proximity modality.
type ValidationRequest struct {
	Modality   string
	Capture    []byte
	Proximity  *ProximityIdentifiers
	Hint       *SessionHint
	SourceAddr string
}

// Decision is the structured outcome of one validation.
type Decision struct {
	Accepted          bool
	Identity          int64
	Confidence        float64
	SecurityViolation bool
	ErrorKind         string
}

// ValidationResult pairs the decision with the disclosed identity data.
// Identity and Vehicles are set only on an accepted decision.
type ValidationResult struct {
	Decision Decision
	Identity *Identity
	Vehicles []Vehicle
}

// DiscriminationRule votes between two near-tied identities by comparing
// one stored scalar feature against a threshold. AbovePrefers names the
// identity favored when the feature exceeds the threshold, BelowPrefers
// when it does not.
type DiscriminationRule struct {
	Feature      string
	Threshold    float64
	AbovePrefers int64
	BelowPrefers int64
}

func fromResult(res validateuc.Result) ValidationResult {
	out := ValidationResult{
		Decision: Decision{
			Accepted:          res.Decision.Accepted,
			Identity:          res.Decision.Identity,
			Confidence:        res.Decision.Confidence,
			SecurityViolation: res.Decision.SecurityViolation,
			ErrorKind:         string(res.Decision.ErrorKind),
		},
	}
	if res.Identity != nil {
		out.Identity = &Identity{
			ID:            res.Identity.ID,
			DisplayName:   res.Identity.DisplayName,
			EnrolledSince: res.Identity.EnrolledSince,
		}
	}
	if len(res.Vehicles) > 0 {
		out.Vehicles = make([]Vehicle, len(res.Vehicles))
		for i, v := range res.Vehicles {
			out.Vehicles[i] = Vehicle(v)
		}
	}
	return out
}
