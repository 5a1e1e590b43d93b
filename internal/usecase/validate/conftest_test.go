package validate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/extract"
	"github.com/kailas-cloud/biogate/internal/secrets"
	"github.com/kailas-cloud/biogate/internal/usecase/match"
)

type mockResolver struct {
	ResolveFunc          func(ctx context.Context, probe feature.Vector) (match.Resolution, error)
	ResolveProximityFunc func(ctx context.Context, probe domain.ProximitySet) (match.Resolution, error)
}

func (m *mockResolver) Resolve(ctx context.Context, probe feature.Vector) (match.Resolution, error) {
	return m.ResolveFunc(ctx, probe)
}

func (m *mockResolver) ResolveProximity(ctx context.Context, probe domain.ProximitySet) (match.Resolution, error) {
	return m.ResolveProximityFunc(ctx, probe)
}

type mockRecorder struct {
	RecordFunc func(ctx context.Context, entry domain.AccessEntry) error
}

func (m *mockRecorder) Record(ctx context.Context, entry domain.AccessEntry) error {
	return m.RecordFunc(ctx, entry)
}

type mockIdentityReader struct {
	GetIdentityFunc       func(ctx context.Context, id int64) (domain.Identity, error)
	ListOwnedVehiclesFunc func(ctx context.Context, id int64) ([]domain.Vehicle, error)
}

func (m *mockIdentityReader) GetIdentity(ctx context.Context, id int64) (domain.Identity, error) {
	return m.GetIdentityFunc(ctx, id)
}

func (m *mockIdentityReader) ListOwnedVehicles(ctx context.Context, id int64) ([]domain.Vehicle, error) {
	return m.ListOwnedVehiclesFunc(ctx, id)
}

type mockGuard struct {
	CheckFunc func(hint *domain.SessionHint, identity int64) bool
}

func (m *mockGuard) Check(hint *domain.SessionHint, identity int64) bool {
	return m.CheckFunc(hint, identity)
}

type stubExtractor struct {
	modality modality.Modality
	vector   feature.Vector
	err      error
}

func (s *stubExtractor) Modality() modality.Modality { return s.modality }

func (s *stubExtractor) Extract([]byte) (feature.Vector, error) {
	return s.vector, s.err
}

// capturingRecorder accumulates access log entries in order.
type capturingRecorder struct {
	entries []domain.AccessEntry
}

func (c *capturingRecorder) Record(_ context.Context, entry domain.AccessEntry) error {
	c.entries = append(c.entries, entry)
	return nil
}

var testValidatedAt = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

type fixture struct {
	resolver   *mockResolver
	guard      *mockGuard
	recorder   *capturingRecorder
	identities *mockIdentityReader
	svc        *Service
}

// newFixture wires a service with permissive defaults: the guard never
// fires and identity 7 owns one vehicle.
func newFixture(t *testing.T, extractors ...extract.Extractor) *fixture {
	t.Helper()
	f := &fixture{
		resolver: &mockResolver{},
		guard: &mockGuard{
			CheckFunc: func(*domain.SessionHint, int64) bool { return false },
		},
		recorder: &capturingRecorder{},
		identities: &mockIdentityReader{
			GetIdentityFunc: func(_ context.Context, id int64) (domain.Identity, error) {
				return domain.Identity{ID: id, DisplayName: "Dana K"}, nil
			},
			ListOwnedVehiclesFunc: func(context.Context, int64) ([]domain.Vehicle, error) {
				return []domain.Vehicle{{ID: 31, Make: "Rivara", Model: "T3", Plate: "KA-7712"}}, nil
			},
		},
	}
	f.svc = New(
		extract.NewSetOf(extractors...),
		f.resolver,
		f.guard,
		f.recorder,
		f.identities,
		secrets.NewHasher("test-salt"),
		zap.NewNop(),
	).WithClock(func() time.Time { return testValidatedAt })
	return f
}

func faceVector(t *testing.T) feature.Vector {
	t.Helper()
	v, err := feature.New(modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor: {0.1, 0.2, 0.3},
	})
	require.NoError(t, err)
	return v
}
