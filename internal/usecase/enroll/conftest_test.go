package enroll

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
)

type mockTemplateStore struct {
	UpsertTemplateFunc     func(ctx context.Context, tpl domain.Template) error
	HasTemplateFunc        func(ctx context.Context, identity int64, m modality.Modality) (bool, error)
	DeleteTemplateFunc     func(ctx context.Context, identity int64, m modality.Modality) error
	DeleteAllTemplatesFunc func(ctx context.Context, identity int64) error
}

func (m *mockTemplateStore) UpsertTemplate(ctx context.Context, tpl domain.Template) error {
	return m.UpsertTemplateFunc(ctx, tpl)
}

func (m *mockTemplateStore) HasTemplate(ctx context.Context, identity int64, mod modality.Modality) (bool, error) {
	return m.HasTemplateFunc(ctx, identity, mod)
}

func (m *mockTemplateStore) DeleteTemplate(ctx context.Context, identity int64, mod modality.Modality) error {
	return m.DeleteTemplateFunc(ctx, identity, mod)
}

func (m *mockTemplateStore) DeleteAllTemplates(ctx context.Context, identity int64) error {
	return m.DeleteAllTemplatesFunc(ctx, identity)
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

var testEnrolledAt = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, store TemplateStore, extractors ...extract.Extractor) *Service {
	t.Helper()
	return New(store, extract.NewSetOf(extractors...), secrets.NewHasher("test-salt"), zap.NewNop()).
		WithClock(func() time.Time { return testEnrolledAt })
}

func faceVector(t *testing.T) feature.Vector {
	t.Helper()
	v, err := feature.New(modality.Face, nil, map[string][]float64{
		feature.HOGDescriptor: {0.1, 0.2, 0.3},
	})
	require.NoError(t, err)
	return v
}
