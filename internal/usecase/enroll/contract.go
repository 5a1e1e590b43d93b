package enroll

import (
	"context"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// TemplateStore persists enrolled templates. Upsert must replace any
// prior template for the same identity+modality atomically.
type TemplateStore interface {
	UpsertTemplate(ctx context.Context, tpl domain.Template) error
	HasTemplate(ctx context.Context, identity int64, m modality.Modality) (bool, error)
	DeleteTemplate(ctx context.Context, identity int64, m modality.Modality) error
	DeleteAllTemplates(ctx context.Context, identity int64) error
}

// ProximityIdentifiers are the raw (unhashed) identifiers presented at
// proximity enrollment. Empty fields are not enrolled.
type ProximityIdentifiers struct {
	KeyFob        string
	MobileDevice  string
	BluetoothAddr string
	NFCTag        string
}

// Empty reports whether no identifier was presented.
func (p ProximityIdentifiers) Empty() bool {
	return p.KeyFob == "" && p.MobileDevice == "" && p.BluetoothAddr == "" && p.NFCTag == ""
}
