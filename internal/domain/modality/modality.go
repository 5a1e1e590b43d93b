package modality

import "fmt"

// Modality is a biometric channel.
type Modality string

const (
	// Face matches a HOG descriptor extracted from a camera frame.
	Face Modality = "face"
	// Voice matches a spectral/cepstral profile extracted from an audio capture.
	Voice Modality = "voice"
	// Retina matches intensity, edge and optic-disc features of a retina scan.
	Retina Modality = "retina"
	// Proximity matches hashed hardware identifiers (key fob, phone, BT, NFC).
	Proximity Modality = "proximity"
)

// All lists every supported modality in a stable order.
func All() []Modality {
	return []Modality{Face, Voice, Retina, Proximity}
}

// IsValid checks if the modality is supported.
func (m Modality) IsValid() bool {
	switch m {
	case Face, Voice, Retina, Proximity:
		return true
	}
	return false
}

// IsBiometric reports whether the modality carries a feature vector
// (as opposed to proximity, which carries discrete identifiers).
func (m Modality) IsBiometric() bool {
	return m == Face || m == Voice || m == Retina
}

func (m Modality) String() string { return string(m) }

// Parse validates a modality name.
func Parse(s string) (Modality, error) {
	m := Modality(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown modality: %q", s)
	}
	return m, nil
}
