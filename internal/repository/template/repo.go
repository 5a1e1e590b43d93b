// Package template persists enrolled templates as JSON documents, one
// per identity+modality. Raw captures are encrypted at rest; feature
// vectors are stored alongside so matching never re-extracts unless the
// stored vector is missing.
package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/biogate/internal/db"
	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/secrets"
)

// store is the consumer interface for templates (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// ReextractFunc rebuilds a feature vector from a decrypted capture when
// the stored vector is missing (legacy documents).
type ReextractFunc func(m modality.Modality, capture []byte) (feature.Vector, error)

// Repo implements the template store contracts of usecase/enroll and
// usecase/match.
type Repo struct {
	store     store
	cipher    secrets.Cipher
	prefix    string
	reextract ReextractFunc
}

// New creates a template repository.
func New(s store, cipher secrets.Cipher) *Repo {
	return &Repo{store: s, cipher: cipher, prefix: "biogate:"}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	r.prefix = prefix
	return r
}

// WithReextract installs the fallback used for documents that carry a
// capture but no feature vector.
func (r *Repo) WithReextract(f ReextractFunc) *Repo {
	r.reextract = f
	return r
}

// UpsertTemplate stores tpl, replacing any previous template for the
// same identity+modality. The whole-document JSON.SET makes the
// replacement atomic: a concurrent scan sees the old or the new
// version, never a mix.
func (r *Repo) UpsertTemplate(ctx context.Context, tpl domain.Template) (err error) {
	doc, err := buildDoc(tpl, r.cipher)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}

	key := r.templateKey(tpl.Modality, tpl.Identity)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// ListTemplates returns every enrolled template for a modality. A
// document that cannot be parsed yields a zero template so the caller
// can count and skip it without aborting the scan.
func (r *Repo) ListTemplates(ctx context.Context, m modality.Modality) ([]domain.Template, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"template:"+string(m)+":*")
	if err != nil {
		return nil, fmt.Errorf("scan templates: %w", err)
	}

	templates := make([]domain.Template, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between scan and get
			}
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		templates = append(templates, r.parseDoc(m, raw))
	}
	return templates, nil
}

// HasTemplate checks whether identity has a template under m.
func (r *Repo) HasTemplate(ctx context.Context, identity int64, m modality.Modality) (bool, error) {
	return r.store.Exists(ctx, r.templateKey(m, identity))
}

// DeleteTemplate removes the template for identity under m. Deleting a
// missing template is not an error.
func (r *Repo) DeleteTemplate(ctx context.Context, identity int64, m modality.Modality) error {
	return r.store.Del(ctx, r.templateKey(m, identity))
}

// DeleteAllTemplates removes every template for identity.
func (r *Repo) DeleteAllTemplates(ctx context.Context, identity int64) error {
	for _, m := range modality.All() {
		if err := r.store.Del(ctx, r.templateKey(m, identity)); err != nil {
			return err
		}
	}
	return nil
}

// parseDoc maps a stored document to a domain template. Parsing
// failures degrade to a zero template rather than an error.
func (r *Repo) parseDoc(m modality.Modality, raw []byte) domain.Template {
	tpl, err := parseTemplateDoc(raw, r.cipher)
	if err != nil {
		return domain.Template{}
	}

	if m.IsBiometric() && tpl.Features.IsZero() && len(tpl.RawCapture) > 0 && r.reextract != nil {
		vec, err := r.reextract(m, tpl.RawCapture)
		if err != nil {
			return domain.Template{}
		}
		tpl.Features = vec
	}
	return tpl
}

// Key pattern: {prefix}template:{modality}:{identity}
func (r *Repo) templateKey(m modality.Modality, identity int64) string {
	return r.prefix + "template:" + string(m) + ":" + strconv.FormatInt(identity, 10)
}
