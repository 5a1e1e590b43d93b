package match

import (
	"math"

	"github.com/kailas-cloud/biogate/internal/domain/feature"
)

// DiscriminationRule prefers one identity over another when a single
// discriminative sub-feature falls on one side of a threshold. The rule
// table is calibration data supplied by configuration, not code.
type DiscriminationRule struct {
	Feature      string
	Threshold    float64
	AbovePrefers int64
	BelowPrefers int64
}

// Per-rule boost and its ceiling, matching the narrow-heuristic intent:
// the profile nudges a near-tie, it never overrides a clear winner.
const (
	contestBoostPerVote = 0.01
	contestBoostMax     = 0.05
)

// ProfileTieBreaker contests near-ties between identities named in a
// discriminative-feature profile. Identities outside the profile are
// never contested.
type ProfileTieBreaker struct {
	rules []DiscriminationRule
}

// NewProfileTieBreaker creates a tie breaker over a rule table.
func NewProfileTieBreaker(rules []DiscriminationRule) *ProfileTieBreaker {
	return &ProfileTieBreaker{rules: rules}
}

// Contest counts profile votes for both identities over the probe's
// discriminative sub-features. The challenger wins when it collects at
// least as many votes as the incumbent and its boosted score overtakes.
func (t *ProfileTieBreaker) Contest(
	probe feature.Vector, incumbent, challenger Candidate,
) (float64, bool) {
	if !t.inProfile(incumbent.Identity) || !t.inProfile(challenger.Identity) {
		return challenger.Score, false
	}

	var challengerVotes, incumbentVotes int
	for _, rule := range t.rules {
		val, ok := probe.Scalar(rule.Feature)
		if !ok {
			continue
		}
		preferred := rule.BelowPrefers
		if val > rule.Threshold {
			preferred = rule.AbovePrefers
		}
		switch preferred {
		case challenger.Identity:
			challengerVotes++
		case incumbent.Identity:
			incumbentVotes++
		}
	}

	if challengerVotes == 0 || challengerVotes < incumbentVotes {
		return challenger.Score, false
	}

	boost := math.Min(contestBoostMax, contestBoostPerVote*float64(challengerVotes))
	adjusted := challenger.Score + boost
	return adjusted, adjusted > incumbent.Score
}

func (t *ProfileTieBreaker) inProfile(identity int64) bool {
	for _, rule := range t.rules {
		if rule.AbovePrefers == identity || rule.BelowPrefers == identity {
			return true
		}
	}
	return false
}

// NoopTieBreaker never contests. Used for modalities without a
// discrimination profile.
type NoopTieBreaker struct{}

// Contest keeps the incumbent.
func (NoopTieBreaker) Contest(_ feature.Vector, _, challenger Candidate) (float64, bool) {
	return challenger.Score, false
}
