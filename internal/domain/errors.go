package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrExtractionFailed signals that no feature vector could be produced
	// from a capture. Surfaced to callers as a rejected match, never a crash.
	ErrExtractionFailed = errors.New("feature extraction failed")
	// ErrNoFaceDetected signals zero face regions in a face capture.
	ErrNoFaceDetected = fmt.Errorf("%w: no face detected", ErrExtractionFailed)
	// ErrCaptureTooShort signals a voice capture below the minimum byte length.
	ErrCaptureTooShort = fmt.Errorf("%w: capture too short", ErrExtractionFailed)
	// ErrBadCapture signals an undecodable capture payload.
	ErrBadCapture = fmt.Errorf("%w: undecodable capture", ErrExtractionFailed)
	// ErrNoIdentifiers signals a proximity probe with no identifiers at all.
	ErrNoIdentifiers = fmt.Errorf("%w: no proximity identifiers provided", ErrExtractionFailed)

	// ErrStoreUnavailable signals an external collaborator failure. The request
	// could not be evaluated at all, as opposed to evaluated and rejected.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSecurityViolation signals a cross-modal identity mismatch within one
	// authentication session.
	ErrSecurityViolation = errors.New("cross-modal security violation")
	// ErrIdentityNotFound signals a missing identity record.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrTemplateCorrupt signals a single unreadable template. The resolver
	// skips it and continues the scan.
	ErrTemplateCorrupt = errors.New("template corrupt")
)

// ErrorKind classifies a decision-level failure for callers.
type ErrorKind string

const (
	// ErrorKindNone means the request was evaluated normally.
	ErrorKindNone ErrorKind = ""
	// ErrorKindExtraction means the capture yielded no feature vector.
	ErrorKindExtraction ErrorKind = "extraction_failed"
	// ErrorKindStore means a collaborator failed and nothing was evaluated.
	ErrorKindStore ErrorKind = "store_unavailable"
)

// KindOf maps an error to its decision-level kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrExtractionFailed):
		return ErrorKindExtraction
	case errors.Is(err, ErrStoreUnavailable):
		return ErrorKindStore
	}
	return ErrorKindNone
}
