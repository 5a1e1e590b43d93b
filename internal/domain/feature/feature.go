package feature

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kailas-cloud/biogate/internal/domain/modality"
)

// Vector is an immutable modality-tagged feature representation.
// Sub-features are either scalars or fixed-length numeric series.
// Extraction either yields a complete vector or fails; a Vector is
// never partially populated.
type Vector struct {
	modality modality.Modality
	scalars  map[string]float64
	series   map[string][]float64
	reduced  bool
}

// New validates and creates a Vector. At least one sub-feature is required.
func New(m modality.Modality, scalars map[string]float64, series map[string][]float64) (Vector, error) {
	return build(m, scalars, series, false)
}

// NewReduced creates a fallback vector carrying only basic statistics.
// The scorer applies the reduced weight table to such vectors.
func NewReduced(m modality.Modality, scalars map[string]float64) (Vector, error) {
	return build(m, scalars, nil, true)
}

func build(m modality.Modality, scalars map[string]float64, series map[string][]float64, reduced bool) (Vector, error) {
	if !m.IsValid() {
		return Vector{}, fmt.Errorf("invalid modality: %q", m)
	}
	if len(scalars)+len(series) == 0 {
		return Vector{}, fmt.Errorf("feature vector requires at least one sub-feature")
	}
	sc := make(map[string]float64, len(scalars))
	for k, v := range scalars {
		sc[k] = v
	}
	se := make(map[string][]float64, len(series))
	for k, v := range series {
		if len(v) == 0 {
			return Vector{}, fmt.Errorf("series sub-feature %q is empty", k)
		}
		cp := make([]float64, len(v))
		copy(cp, v)
		se[k] = cp
	}
	return Vector{modality: m, scalars: sc, series: se, reduced: reduced}, nil
}

// Modality returns the biometric channel this vector was extracted from.
func (v Vector) Modality() modality.Modality { return v.modality }

// Reduced reports whether this vector came from the fallback extraction tier.
func (v Vector) Reduced() bool { return v.reduced }

// Len returns the number of sub-features.
func (v Vector) Len() int { return len(v.scalars) + len(v.series) }

// IsZero reports whether the vector is the uninitialized empty value.
func (v Vector) IsZero() bool { return v.Len() == 0 }

// Scalar returns a named scalar sub-feature.
func (v Vector) Scalar(name string) (float64, bool) {
	val, ok := v.scalars[name]
	return val, ok
}

// Series returns a copy of a named series sub-feature.
func (v Vector) Series(name string) ([]float64, bool) {
	s, ok := v.series[name]
	if !ok {
		return nil, false
	}
	cp := make([]float64, len(s))
	copy(cp, s)
	return cp, true
}

// Has reports whether the named sub-feature is present (scalar or series).
func (v Vector) Has(name string) bool {
	if _, ok := v.scalars[name]; ok {
		return true
	}
	_, ok := v.series[name]
	return ok
}

// Names returns all sub-feature names in sorted order.
func (v Vector) Names() []string {
	names := make([]string, 0, v.Len())
	for k := range v.scalars {
		names = append(names, k)
	}
	for k := range v.series {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// vectorJSON is the persistence shape of a Vector.
type vectorJSON struct {
	Modality string               `json:"modality"`
	Reduced  bool                 `json:"reduced,omitempty"`
	Scalars  map[string]float64   `json:"scalars,omitempty"`
	Series   map[string][]float64 `json:"series,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(vectorJSON{
		Modality: string(v.modality),
		Reduced:  v.reduced,
		Scalars:  v.scalars,
		Series:   v.series,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw vectorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal feature vector: %w", err)
	}
	m, err := modality.Parse(raw.Modality)
	if err != nil {
		return fmt.Errorf("unmarshal feature vector: %w", err)
	}
	built, err := build(m, raw.Scalars, raw.Series, raw.Reduced)
	if err != nil {
		return fmt.Errorf("unmarshal feature vector: %w", err)
	}
	*v = built
	return nil
}
