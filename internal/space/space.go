// Package space configures per-column embedding spaces and combines them into an index.
package space

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tabvec/internal/schema"
)

// Kind tags the variant of an embedding space.
type Kind int

const (
	KindCategorical Kind = iota
	KindText
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the configuration spelling of a space kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "categorical", "category":
		return KindCategorical, nil
	case "text", "textual":
		return KindText, nil
	case "number", "numeric", "bounded_numeric":
		return KindNumber, nil
	default:
		return 0, fmt.Errorf("unknown space kind %q", s)
	}
}

// Mode selects how a number space compares values.
type Mode int

const (
	// ModeSimilar compares numbers by closeness within the declared bounds.
	ModeSimilar Mode = iota
)

func (m Mode) String() string {
	if m == ModeSimilar {
		return "similar"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the configuration spelling of a number mode. Empty means similar.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "similar":
		return ModeSimilar, nil
	default:
		return 0, fmt.Errorf("unsupported number mode %q", s)
	}
}

// Space is one configured embedding space over a single schema field.
// Implementations are Categorical, Text and Number.
type Space interface {
	Kind() Kind
	Field() schema.Field
	// Dimension reports the sub-vector length. Text spaces only know it after
	// their model has embedded values, and report false.
	Dimension() (int, bool)
	String() string
}

// Categorical one-hot encodes values over a fixed category set.
// Values outside the set encode to the zero vector.
type Categorical struct {
	field      schema.Field
	Categories []string
}

func (c Categorical) Kind() Kind             { return KindCategorical }
func (c Categorical) Field() schema.Field    { return c.field }
func (c Categorical) Dimension() (int, bool) { return len(c.Categories), true }
func (c Categorical) String() string {
	return fmt.Sprintf("categorical(%s, %v)", c.field.Key, c.Categories)
}

// Encode returns the one-hot vector of value.
func (c Categorical) Encode(value string) []float32 {
	out := make([]float32, len(c.Categories))
	value = strings.TrimSpace(value)
	for i, cat := range c.Categories {
		if cat == value {
			out[i] = 1
			break
		}
	}
	return out
}

// Text embeds free text values with an external text-embedding model.
type Text struct {
	field   schema.Field
	ModelID string
}

func (t Text) Kind() Kind             { return KindText }
func (t Text) Field() schema.Field    { return t.field }
func (t Text) Dimension() (int, bool) { return 0, false }
func (t Text) String() string         { return fmt.Sprintf("text(%s, %s)", t.field.Key, t.ModelID) }

// Number encodes bounded numbers so that cosine similarity follows closeness.
type Number struct {
	field schema.Field
	Min   float64
	Max   float64
	Mode  Mode
}

func (n Number) Kind() Kind             { return KindNumber }
func (n Number) Field() schema.Field    { return n.field }
func (n Number) Dimension() (int, bool) { return 2, true }
func (n Number) String() string {
	return fmt.Sprintf("number(%s, [%g, %g], %s)", n.field.Key, n.Min, n.Max, n.Mode)
}

// Encode clamps value to [Min, Max] and places it on a quarter circle:
// Min maps to (1, 0) and Max to (0, 1). Missing or unparsable values encode to zero.
func (n Number) Encode(value string) []float32 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) {
		return []float32{0, 0}
	}
	span := n.Max - n.Min
	t := 0.0
	if span > 0 {
		t = (math.Min(math.Max(v, n.Min), n.Max) - n.Min) / span
	}
	theta := t * math.Pi / 2
	return []float32{float32(math.Cos(theta)), float32(math.Sin(theta))}
}
