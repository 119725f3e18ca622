// Package engine is the in-process structured indexing engine. It ingests
// identifier-tagged rows, computes one combined vector per row from an index of
// embedding spaces and hands the vectors back as an unordered collection.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"tabvec/internal/domain"
	"tabvec/internal/embedding"
	"tabvec/internal/schema"
	"tabvec/internal/space"
	"tabvec/internal/vectorstore"
)

// ErrUnknownIndex is returned when vectors are requested for an index or schema
// the engine was not built with.
var ErrUnknownIndex = errors.New("index not registered with engine")

// ErrMaterialized is returned by Put once vectors have been computed.
var ErrMaterialized = errors.New("engine already materialized; build a new engine for new rows")

// Row is one dataset row tagged with its identifier. Values are keyed by schema field key.
type Row struct {
	ID     int
	Values map[string]string
}

// Collection is the result of GetAllVectors. IDs[i] belongs to Vectors[i];
// the order of the pairs is unspecified.
type Collection struct {
	IDs     []int
	Vectors [][]float32
}

// Engine computes structured vectors for one schema and one index.
type Engine struct {
	schema   *schema.Schema
	index    *space.Index
	embedder embedding.Embedder
	store    vectorstore.Storage

	rows         []Row
	ids          map[int]struct{}
	materialized bool
}

// New creates an engine. The store must not be shared with another engine.
func New(sch *schema.Schema, ix *space.Index, emb embedding.Embedder, store vectorstore.Storage) *Engine {
	return &Engine{
		schema:   sch,
		index:    ix,
		embedder: emb,
		store:    store,
		ids:      make(map[int]struct{}),
	}
}

// ParseDataset maps every row of ds onto schema fields and tags it with its
// 0-based position as identifier.
func ParseDataset(ds *domain.Dataset, sch *schema.Schema) []Row {
	fields := sch.Fields()
	cols := make([]int, len(fields))
	for i, f := range fields {
		cols[i] = ds.ColumnIndex(f.Column)
	}
	rows := make([]Row, ds.Len())
	for r, cells := range ds.Rows {
		values := make(map[string]string, len(fields))
		for i, f := range fields {
			if cols[i] >= 0 {
				values[f.Key] = cells[cols[i]]
			}
		}
		rows[r] = Row{ID: r, Values: values}
	}
	return rows
}

// Put ingests rows. Identifiers must be unique across all calls and values may
// only use keys of the engine's schema.
func (e *Engine) Put(ctx context.Context, rows []Row) error {
	if e.materialized {
		return ErrMaterialized
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	batch := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		if _, dup := e.ids[r.ID]; dup {
			return fmt.Errorf("row id %d already ingested", r.ID)
		}
		if _, dup := batch[r.ID]; dup {
			return fmt.Errorf("row id %d repeated in batch", r.ID)
		}
		batch[r.ID] = struct{}{}
		for key := range r.Values {
			if _, ok := e.schema.Field(key); !ok {
				return fmt.Errorf("row %d: unknown field %q", r.ID, key)
			}
		}
	}
	for id := range batch {
		e.ids[id] = struct{}{}
	}
	e.rows = append(e.rows, rows...)
	return nil
}

// GetAllVectors returns every ingested row's combined vector. Vectors are
// computed on the first call and written to the store; the result is the
// store's enumeration, which carries no ordering guarantee.
func (e *Engine) GetAllVectors(ctx context.Context, ix *space.Index, sch *schema.Schema) (*Collection, error) {
	if ix != e.index || sch != e.schema {
		return nil, ErrUnknownIndex
	}
	if !e.materialized {
		if err := e.materialize(ctx); err != nil {
			return nil, err
		}
	}
	records, err := e.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	out := &Collection{IDs: make([]int, len(records)), Vectors: make([][]float32, len(records))}
	for i, r := range records {
		out.IDs[i] = r.ID
		out.Vectors[i] = r.Vector
	}
	return out, nil
}

// Close releases the engine's store.
func (e *Engine) Close(ctx context.Context) error {
	return e.store.Clear(ctx)
}

func (e *Engine) materialize(ctx context.Context) error {
	if len(e.rows) == 0 {
		e.materialized = true
		return nil
	}
	vectors, err := e.encode(ctx)
	if err != nil {
		return err
	}
	if err := e.store.Init(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	records := make([]domain.VectorRecord, len(e.rows))
	for i, r := range e.rows {
		records[i] = domain.VectorRecord{ID: r.ID, Vector: vectors[i]}
	}
	if err := e.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	e.materialized = true
	return nil
}

// encode computes the combined vector of every row, in e.rows order. Each space
// contributes its L2-normalized sub-vector scaled by 1/sqrt(#spaces), so a row
// with no missing value has unit norm.
func (e *Engine) encode(ctx context.Context) ([][]float32, error) {
	spaces := e.index.Spaces()
	weight := 1 / math.Sqrt(float64(len(spaces)))
	out := make([][]float32, len(e.rows))
	for _, s := range spaces {
		subs, err := e.encodeSpace(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("space %s: %w", s, err)
		}
		for i, sub := range subs {
			out[i] = append(out[i], scaled(sub, weight)...)
		}
	}
	return out, nil
}

func (e *Engine) encodeSpace(ctx context.Context, s space.Space) ([][]float32, error) {
	key := s.Field().Key
	values := make([]string, len(e.rows))
	for i, r := range e.rows {
		values[i] = r.Values[key]
	}
	switch sp := s.(type) {
	case space.Categorical:
		return encodeEach(values, sp.Encode), nil
	case space.Number:
		return encodeEach(values, sp.Encode), nil
	case space.Text:
		vecs, err := e.embedder.Embed(ctx, values, sp.ModelID)
		if err != nil {
			return nil, err
		}
		if err := embedding.CheckShape(vecs, len(values)); err != nil {
			return nil, err
		}
		return vecs, nil
	default:
		return nil, fmt.Errorf("unsupported space %T", s)
	}
}

func encodeEach(values []string, enc func(string) []float32) [][]float32 {
	out := make([][]float32, len(values))
	for i, v := range values {
		out[i] = enc(v)
	}
	return out
}

// scaled returns v normalized to length w. Zero vectors stay zero.
func scaled(v []float32, w float64) []float32 {
	norm := 0.0
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	f := w / math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) * f)
	}
	return out
}
