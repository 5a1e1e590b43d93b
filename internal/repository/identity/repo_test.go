package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/biogate/internal/db"
	"github.com/kailas-cloud/biogate/internal/domain"
)

type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)
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
	return nil, db.ErrKeyNotFound
}

func TestUpsertGet_RoundTrip(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms)
	ctx := context.Background()

	docs := map[string][]byte{}
	ms.jsonSetFn = func(_ context.Context, key, _ string, data []byte) error {
		docs[key] = data
		return nil
	}
	ms.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		raw, ok := docs[key]
		if !ok {
			return nil, db.ErrKeyNotFound
		}
		return raw, nil
	}

	ident := domain.Identity{
		ID:            7,
		DisplayName:   "Dana K",
		EnrolledSince: time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
	}
	vehicles := []domain.Vehicle{
		{ID: 12, Make: "Rivara", Model: "T3", Year: 2024, Plate: "KA-7712", Color: "silver"},
	}
	if err := repo.Upsert(ctx, ident, vehicles); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetIdentity(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DisplayName != "Dana K" {
		t.Errorf("unexpected identity: %+v", got)
	}

	owned, err := repo.ListOwnedVehicles(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != 12 {
		t.Errorf("unexpected vehicles: %+v", owned)
	}
}

func TestGetIdentity_NotFound(t *testing.T) {
	repo := New(&mockStore{})
	_, err := repo.GetIdentity(context.Background(), 99)
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestGetIdentity_StoreError(t *testing.T) {
	ms := &mockStore{jsonGetFn: func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, errors.New("conn refused")
	}}
	repo := New(ms)
	if _, err := repo.GetIdentity(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}
}
