package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/biogate/internal/db"
)

func TestJSONSetGet_RoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.JSONSet(ctx, "k1", "$", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := s.JSONGet(ctx, "k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("unexpected payload: %s", data)
	}
}

func TestJSONGet_NotFound(t *testing.T) {
	s := NewStore()
	_, err := s.JSONGet(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDel_RemovesKey(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.JSONSet(ctx, "k1", "$", []byte(`1`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Del(ctx, "k1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exists, err := s.Exists(ctx, "k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected key to be gone")
	}
}

func TestDel_MissingKey(t *testing.T) {
	s := NewStore()
	if err := s.Del(context.Background(), "missing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScan_Pattern(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for _, k := range []string{"tpl:face:1", "tpl:face:2", "tpl:voice:1", "log:abc"} {
		if err := s.JSONSet(ctx, k, "$", []byte(`1`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	keys, err := s.Scan(ctx, "tpl:face:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
}

func TestJSONSet_CopiesData(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	buf := []byte(`{"a":1}`)
	if err := s.JSONSet(ctx, "k1", "$", buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buf[2] = 'b'

	data, err := s.JSONGet(ctx, "k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("stored payload aliased caller buffer: %s", data)
	}
}
