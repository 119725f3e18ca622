// Package schema derives a typed row schema from a dataset's columns.
package schema

import (
	"fmt"

	"tabvec/internal/domain"
)

// IDField is the reserved key of the row identifier field.
const IDField = "id"

// Kind is the value type of a schema field.
type Kind int

const (
	KindNumeric Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field describes one column of the source dataset.
type Field struct {
	Key    string
	Column string
	Kind   Kind
}

// Schema is the immutable set of typed fields of a dataset, excluding the target column.
type Schema struct {
	fields   []Field
	byKey    map[string]int
	byColumn map[string]int
}

// Build creates a schema with one numeric field per numeric column and one text
// field per text column. It fails with domain.ErrSchemaConflict when two columns
// share a canonical key or a column claims the reserved id key.
func Build(numeric, text []string) (*Schema, error) {
	s := &Schema{
		byKey:    make(map[string]int, len(numeric)+len(text)),
		byColumn: make(map[string]int, len(numeric)+len(text)),
	}
	add := func(col string, kind Kind) error {
		key := Canonical(col)
		if key == IDField {
			return &domain.SchemaConflictError{Key: key, Columns: []string{col}}
		}
		if i, ok := s.byKey[key]; ok {
			return &domain.SchemaConflictError{Key: key, Columns: []string{s.fields[i].Column, col}}
		}
		s.byKey[key] = len(s.fields)
		s.byColumn[col] = len(s.fields)
		s.fields = append(s.fields, Field{Key: key, Column: col, Kind: kind})
		return nil
	}
	for _, col := range numeric {
		if err := add(col, KindNumeric); err != nil {
			return nil, err
		}
	}
	for _, col := range text {
		if err := add(col, KindText); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FromDataset classifies the columns of ds and builds its schema.
func FromDataset(ds *domain.Dataset) (*Schema, error) {
	numeric, text := Classify(ds)
	return Build(numeric, text)
}

// Fields returns a copy of the schema fields: numeric fields first, then text fields.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields, not counting the id field.
func (s *Schema) Len() int { return len(s.fields) }

// Field looks a field up by key.
func (s *Schema) Field(key string) (Field, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// ForColumn looks a field up by its source column name.
func (s *Schema) ForColumn(col string) (Field, bool) {
	i, ok := s.byColumn[col]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}
