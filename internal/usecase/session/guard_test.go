package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

func TestGuard_NoHintNeverViolates(t *testing.T) {
	g := NewGuard(0, zap.NewNop())

	assert.False(t, g.Check(nil, 7))
}

func TestGuard_SameIdentityPasses(t *testing.T) {
	g := NewGuard(0, zap.NewNop())
	hint := &domain.SessionHint{Identity: 7, Modality: modality.Face}

	assert.False(t, g.Check(hint, 7))
}

func TestGuard_MismatchViolates(t *testing.T) {
	g := NewGuard(0, zap.NewNop())
	hint := &domain.SessionHint{Identity: 7, Modality: modality.Face}

	assert.True(t, g.Check(hint, 9))
}

func TestGuard_OverrideIdentityExempt(t *testing.T) {
	g := NewGuard(9, zap.NewNop())
	hint := &domain.SessionHint{Identity: 7, Modality: modality.Voice}

	assert.False(t, g.Check(hint, 9))
	// The exemption is one way: a session started by the override
	// identity still violates when a different identity follows.
	assert.True(t, g.Check(&domain.SessionHint{Identity: 9, Modality: modality.Voice}, 7))
}

func TestGuard_ZeroOverrideDisablesExemption(t *testing.T) {
	g := NewGuard(0, zap.NewNop())
	hint := &domain.SessionHint{Identity: 7, Modality: modality.Retina}

	assert.True(t, g.Check(hint, 9))
	assert.Equal(t, int64(0), g.OverrideIdentity())
}
