package template

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/biogate/internal/domain"
	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
	"github.com/kailas-cloud/biogate/internal/secrets"
)

// templateDoc is the stored JSON shape. Capture is base64 of the
// AES-GCM sealed raw capture.
type templateDoc struct {
	Identity   int64                `json:"identity"`
	Modality   string               `json:"modality"`
	Features   json.RawMessage      `json:"features,omitempty"`
	Proximity  *domain.ProximitySet `json:"proximity,omitempty"`
	Capture    string               `json:"capture,omitempty"`
	EnrolledAt time.Time            `json:"enrolled_at"`
}

func buildDoc(tpl domain.Template, cipher secrets.Cipher) (templateDoc, error) {
	doc := templateDoc{
		Identity:   tpl.Identity,
		Modality:   string(tpl.Modality),
		Proximity:  tpl.Proximity,
		EnrolledAt: tpl.EnrolledAt,
	}

	if !tpl.Features.IsZero() {
		data, err := json.Marshal(tpl.Features)
		if err != nil {
			return templateDoc{}, fmt.Errorf("marshal features: %w", err)
		}
		doc.Features = data
	}

	if len(tpl.RawCapture) > 0 {
		sealed, err := cipher.Encrypt(tpl.RawCapture)
		if err != nil {
			return templateDoc{}, fmt.Errorf("encrypt capture: %w", err)
		}
		doc.Capture = base64.StdEncoding.EncodeToString(sealed)
	}

	return doc, nil
}

func parseTemplateDoc(raw []byte, cipher secrets.Cipher) (domain.Template, error) {
	var doc templateDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Template{}, fmt.Errorf("unmarshal template: %w", err)
	}

	tpl := domain.Template{
		Identity:   doc.Identity,
		Modality:   modality.Modality(doc.Modality),
		Proximity:  doc.Proximity,
		EnrolledAt: doc.EnrolledAt,
	}

	if len(doc.Features) > 0 {
		var vec feature.Vector
		if err := json.Unmarshal(doc.Features, &vec); err != nil {
			return domain.Template{}, fmt.Errorf("unmarshal features: %w", err)
		}
		tpl.Features = vec
	}

	if doc.Capture != "" {
		sealed, err := base64.StdEncoding.DecodeString(doc.Capture)
		if err != nil {
			return domain.Template{}, fmt.Errorf("decode capture: %w", err)
		}
		plain, err := cipher.Decrypt(sealed)
		if err != nil {
			return domain.Template{}, fmt.Errorf("decrypt capture: %w", err)
		}
		tpl.RawCapture = plain
	}

	return tpl, nil
}
