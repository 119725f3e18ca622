package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaConflict is returned when two columns map to the same schema field.
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrEmptyIndex is returned when no embedding space could be configured.
	ErrEmptyIndex = errors.New("empty index: no embedding space configured")
	// ErrIncompleteRetrieval is returned when retrieved identifiers do not cover the rows exactly.
	ErrIncompleteRetrieval = errors.New("incomplete retrieval")
	// ErrInsufficientRank is returned when more components are requested than available.
	ErrInsufficientRank = errors.New("insufficient rank")
	// ErrModelUnavailable is returned when a text embedding model cannot be resolved.
	ErrModelUnavailable = errors.New("model unavailable")
)

// SchemaConflictError names the field key claimed by more than one column.
type SchemaConflictError struct {
	Key     string
	Columns []string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("%s: columns %s all map to field %q", ErrSchemaConflict, quoteAll(e.Columns), e.Key)
}

func (e *SchemaConflictError) Is(target error) bool { return target == ErrSchemaConflict }

// IncompleteRetrievalError describes how a retrieved identifier set differs from {0..Expected-1}.
type IncompleteRetrievalError struct {
	Expected   int
	Got        int
	Missing    []int
	Duplicates []int
	OutOfRange []int
}

func (e *IncompleteRetrievalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: expected ids 0..%d, got %d records", ErrIncompleteRetrieval, e.Expected-1, e.Got)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ", missing %v", e.Missing)
	}
	if len(e.Duplicates) > 0 {
		fmt.Fprintf(&b, ", duplicated %v", e.Duplicates)
	}
	if len(e.OutOfRange) > 0 {
		fmt.Fprintf(&b, ", out of range %v", e.OutOfRange)
	}
	return b.String()
}

func (e *IncompleteRetrievalError) Is(target error) bool { return target == ErrIncompleteRetrieval }

// InsufficientRankError reports a projection request larger than the matrix width.
type InsufficientRankError struct {
	Requested int
	Columns   int
}

func (e *InsufficientRankError) Error() string {
	return fmt.Sprintf("%s: requested %d components from a matrix with %d columns", ErrInsufficientRank, e.Requested, e.Columns)
}

func (e *InsufficientRankError) Is(target error) bool { return target == ErrInsufficientRank }

// ModelUnavailableError carries the model identifier that could not be resolved.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type ModelUnavailableError struct {
	ModelID string
	cause   error
}

// NewModelUnavailable wraps cause (which may be nil) for modelID.
func NewModelUnavailable(modelID string, cause error) *ModelUnavailableError {
	return &ModelUnavailableError{ModelID: modelID, cause: cause}
}

func (e *ModelUnavailableError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %q: %v", ErrModelUnavailable, e.ModelID, e.cause)
	}
	return fmt.Sprintf("%s: %q", ErrModelUnavailable, e.ModelID)
}

func (e *ModelUnavailableError) Unwrap() error { return e.cause }

func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}
