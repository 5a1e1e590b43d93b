// Package identity reads identity profiles and vehicle ownership.
// Records are provisioned out of band (fleet onboarding); the matching
// path only ever reads them.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/biogate/internal/db"
	"github.com/kailas-cloud/biogate/internal/domain"
)

// store is the consumer interface for identity records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// identityDoc is the stored JSON shape: profile plus owned vehicles.
type identityDoc struct {
	Identity domain.Identity  `json:"identity"`
	Vehicles []domain.Vehicle `json:"vehicles,omitempty"`
}

// Repo implements usecase/validate.IdentityReader.
type Repo struct {
	store  store
	prefix string
}

// New creates an identity repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: "biogate:"}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	r.prefix = prefix
	return r
}

// Upsert stores an identity record with its owned vehicles. Used by
// provisioning, never by the validation path.
func (r *Repo) Upsert(ctx context.Context, ident domain.Identity, vehicles []domain.Vehicle) error {
	data, err := json.Marshal(identityDoc{Identity: ident, Vehicles: vehicles})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	key := r.identityKey(ident.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// GetIdentity returns the profile for id.
func (r *Repo) GetIdentity(ctx context.Context, id int64) (domain.Identity, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return domain.Identity{}, err
	}
	return doc.Identity, nil
}

// ListOwnedVehicles returns the vehicles owned by id.
func (r *Repo) ListOwnedVehicles(ctx context.Context, id int64) ([]domain.Vehicle, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.Vehicles, nil
}

func (r *Repo) get(ctx context.Context, id int64) (identityDoc, error) {
	raw, err := r.store.JSONGet(ctx, r.identityKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return identityDoc{}, domain.ErrIdentityNotFound
		}
		return identityDoc{}, fmt.Errorf("json.get identity %d: %w", id, err)
	}
	var doc identityDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return identityDoc{}, fmt.Errorf("unmarshal identity %d: %w", id, err)
	}
	return doc, nil
}

// Key pattern: {prefix}identity:{id}
func (r *Repo) identityKey(id int64) string {
	return r.prefix + "identity:" + strconv.FormatInt(id, 10)
}
