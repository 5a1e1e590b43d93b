package template

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/secrets"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn     func(ctx context.Context, key string) error
	existsFn  func(ctx context.Context, key string) (bool, error)
	scanFn    func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func testCipher(t *testing.T) secrets.Cipher {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	kp, err := secrets.NewStaticKeyProvider(key)
	if err != nil {
		t.Fatalf("key provider: %v", err)
	}
	return secrets.NewAESGCMCipher(kp)
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, testCipher(t))
	return repo, ms
}

func testTemplate(t *testing.T) domain.Template {
	t.Helper()
	vec, err := feature.New(modality.Face,
		map[string]float64{},
		map[string][]float64{feature.HOGDescriptor: {0.1, 0.2, 0.3}},
	)
	if err != nil {
		t.Fatalf("build vector: %v", err)
	}
	return domain.Template{
		Identity:   7,
		Modality:   modality.Face,
		Features:   vec,
		RawCapture: []byte("raw-image-bytes"),
		EnrolledAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
