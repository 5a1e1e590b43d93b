// Package session enforces that every accepted modality within one
// authentication flow resolves to the same identity.
package session

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
)

// Guard is the cross-modal identity check. It keeps no state of its own:
// the caller re-supplies the previously accepted identity as a hint on
// every request.
type Guard struct {
	// override is exempt from the mismatch check regardless of the hint.
	// A deliberate policy escape hatch for a designated default identity.
	override int64
	logger   *zap.Logger
}

// NewGuard creates a guard with the configured override identity.
func NewGuard(override int64, logger *zap.Logger) *Guard {
	return &Guard{override: override, logger: logger}
}

// OverrideIdentity returns the configured override identity.
func (g *Guard) OverrideIdentity() int64 { return g.override }

// Check evaluates a newly accepted identity against the session hint.
// It returns true on a security violation: the caller must reject the
// session, log failed access for both identities, and restart
// authentication.
func (g *Guard) Check(hint *domain.SessionHint, identity int64) bool {
	if hint == nil || hint.Identity == identity {
		return false
	}
	if identity == g.override {
		g.logger.Info("Cross-modal mismatch allowed for override identity",
			zap.Int64("prior_identity", hint.Identity),
			zap.Int64("identity", identity),
		)
		return false
	}
	g.logger.Warn("Cross-modal security violation",
		zap.Int64("prior_identity", hint.Identity),
		zap.String("prior_modality", hint.Modality.String()),
		zap.Int64("identity", identity),
	)
	return true
}
