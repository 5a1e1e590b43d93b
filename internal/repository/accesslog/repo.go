// Package accesslog appends authentication attempt records. Entries are
// immutable; the day segment in the key partitions the log for
// retention sweeps.
package accesslog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/biogate/internal/domain"
)

// store is the consumer interface for access log entries (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
}

// Repo implements usecase/validate.AccessRecorder.
type Repo struct {
	store  store
	prefix string
}

// New creates an access log repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: "biogate:"}
}

// WithKeyPrefix overrides the key namespace.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	r.prefix = prefix
	return r
}

// Record appends one entry. The caller supplies the entry id.
func (r *Repo) Record(ctx context.Context, entry domain.AccessEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("access entry requires an id")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal access entry: %w", err)
	}
	key := r.entryKey(entry)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Key pattern: {prefix}access:{yyyymmdd}:{id}
func (r *Repo) entryKey(entry domain.AccessEntry) string {
	return r.prefix + "access:" + entry.Timestamp.UTC().Format("20060102") + ":" + entry.ID
}
