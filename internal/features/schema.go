package features

import (
	"errors"
	"fmt"

	"mql-predict/internal/domain"
)

// ErrUnknownColumn is returned when a manifest names a feature column the
// catalog does not know. This is schema drift between training and inference
// and must never be silently coerced.
var ErrUnknownColumn = errors.New("unknown feature column")

// Schema is an ordered feature list resolved against a model manifest.
// Column order is exactly the manifest's order.
type Schema struct {
	features []Feature
}

// ResolveSchema maps manifest column names onto catalog features, preserving
// the manifest order. Any unknown name is a hard error.
func ResolveSchema(columns []string) (*Schema, error) {
	if len(columns) == 0 {
		return nil, errors.New("empty feature column list")
	}

	byName := make(map[string]Feature, len(columns))
	for _, f := range Catalog() {
		byName[f.Name] = f
	}

	resolved := make([]Feature, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		f, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate feature column: %q", name)
		}
		seen[name] = struct{}{}
		resolved = append(resolved, f)
	}

	return &Schema{features: resolved}, nil
}

// Columns returns the schema's column names in emission order.
func (s *Schema) Columns() []string {
	names := make([]string, len(s.features))
	for i, f := range s.features {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of feature columns.
func (s *Schema) Len() int { return len(s.features) }

// Vector engineers one sample into a feature vector in schema order.
func (s *Schema) Vector(sample *domain.UserSample) []float64 {
	x := make([]float64, len(s.features))
	for i, f := range s.features {
		x[i] = f.Compute(sample)
	}
	return x
}

// Matrix engineers a batch of samples, one row per sample, preserving input
// row order.
func (s *Schema) Matrix(samples []*domain.UserSample) [][]float64 {
	rows := make([][]float64, len(samples))
	for i, sample := range samples {
		rows[i] = s.Vector(sample)
	}
	return rows
}
