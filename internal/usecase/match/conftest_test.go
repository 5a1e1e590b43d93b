package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/score"
)

type mockTemplateSource struct {
	ListTemplatesFunc func(ctx context.Context, m modality.Modality) ([]domain.Template, error)
}

func (m *mockTemplateSource) ListTemplates(ctx context.Context, mod modality.Modality) ([]domain.Template, error) {
	return m.ListTemplatesFunc(ctx, mod)
}

type mockTieBreaker struct {
	ContestFunc func(probe feature.Vector, incumbent, challenger Candidate) (float64, bool)
}

func (m *mockTieBreaker) Contest(probe feature.Vector, incumbent, challenger Candidate) (float64, bool) {
	return m.ContestFunc(probe, incumbent, challenger)
}

func fixedSource(templates ...domain.Template) *mockTemplateSource {
	return &mockTemplateSource{
		ListTemplatesFunc: func(context.Context, modality.Modality) ([]domain.Template, error) {
			return templates, nil
		},
	}
}

func newTestService(src TemplateSource, thresholds map[modality.Modality]float64) *Service {
	return New(src, score.NewSet(), thresholds, zap.NewNop())
}

func faceProbe(t *testing.T, hog []float64) feature.Vector {
	t.Helper()
	v, err := feature.New(modality.Face, nil, map[string][]float64{feature.HOGDescriptor: hog})
	require.NoError(t, err)
	return v
}

func faceTemplate(t *testing.T, identity int64, hog []float64) domain.Template {
	t.Helper()
	return domain.Template{
		Identity: identity,
		Modality: modality.Face,
		Features: faceProbe(t, hog),
	}
}

func proximityTemplate(identity int64, set domain.ProximitySet) domain.Template {
	return domain.Template{
		Identity:  identity,
		Modality:  modality.Proximity,
		Proximity: &set,
	}
}
