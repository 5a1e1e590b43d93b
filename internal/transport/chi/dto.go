package chi

import (
	"encoding/base64"

	"github.com/kailas-cloud/biogate/internal/domain"
	validateuc "github.com/kailas-cloud/biogate/internal/usecase/validate"
)

// errorCode is the machine-readable error discriminator.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeExtractionFailed errorCode = "extraction_failed"
	codeIdentityNotFound errorCode = "identity_not_found"
	codeStoreUnavailable errorCode = "store_unavailable"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// enrollRequest carries either a capture (biometric modalities) or
// proximity identifiers.
type enrollRequest struct {
	Identity      int64  `json:"identity"`
	Capture       string `json:"capture,omitempty"`
	KeyFob        string `json:"key_fob,omitempty"`
	MobileDevice  string `json:"mobile_device,omitempty"`
	BluetoothAddr string `json:"bluetooth_addr,omitempty"`
	NFCTag        string `json:"nfc_tag,omitempty"`
}

type enrollResponse struct {
	Identity int64  `json:"identity"`
	Modality string `json:"modality"`
	Features int    `json:"features,omitempty"`
	Reduced  bool   `json:"reduced,omitempty"`
}

// sessionHint is the cross-modal context the caller re-supplies on every
// request; the service never stores it.
type sessionHint struct {
	Identity int64  `json:"identity"`
	Modality string `json:"modality"`
}

type validateRequest struct {
	Capture       string       `json:"capture,omitempty"`
	KeyFob        string       `json:"key_fob,omitempty"`
	MobileDevice  string       `json:"mobile_device,omitempty"`
	BluetoothAddr string       `json:"bluetooth_addr,omitempty"`
	NFCTag        string       `json:"nfc_tag,omitempty"`
	Session       *sessionHint `json:"session,omitempty"`
}

type validateResponse struct {
	domain.Decision
	Profile  *identityProfile `json:"profile,omitempty"`
	Vehicles []domain.Vehicle `json:"vehicles,omitempty"`
}

type identityProfile struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

func validateResponseFrom(result validateuc.Result) validateResponse {
	resp := validateResponse{Decision: result.Decision}
	if result.Identity != nil {
		resp.Profile = &identityProfile{
			ID:          result.Identity.ID,
			DisplayName: result.Identity.DisplayName,
		}
	}
	resp.Vehicles = result.Vehicles
	return resp
}

type statusResponse struct {
	Identity int64           `json:"identity"`
	Enrolled map[string]bool `json:"enrolled"`
}

type vehiclesResponse struct {
	Identity int64            `json:"identity"`
	Vehicles []domain.Vehicle `json:"vehicles"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func base64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
