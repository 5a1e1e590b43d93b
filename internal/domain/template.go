package domain

import (
	"time"

	"github.com/kailas-cloud/biogate/internal/domain/feature"
	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// Template is an enrolled reference for one identity+modality. At most one
// template exists per identity per modality; enrollment overwrites.
//
// Biometric modalities carry a feature vector plus the raw capture it was
// extracted from (encrypted at rest by the repository; decrypted here).
// Proximity carries hashed hardware identifiers instead.
type Template struct {
	Identity   int64
	Modality   modality.Modality
	Features   feature.Vector
	Proximity  *ProximitySet
	RawCapture []byte
	EnrolledAt time.Time
}

// ProximitySet holds up to four hashed proximity identifiers.
// Empty fields mean the identifier was not enrolled/presented.
type ProximitySet struct {
	KeyFob        string `json:"key_fob,omitempty"`
	MobileDevice  string `json:"mobile_device,omitempty"`
	BluetoothAddr string `json:"bluetooth_addr,omitempty"`
	NFCTag        string `json:"nfc_tag,omitempty"`
}

// Empty reports whether no identifier is present.
func (p ProximitySet) Empty() bool {
	return p.KeyFob == "" && p.MobileDevice == "" && p.BluetoothAddr == "" && p.NFCTag == ""
}
