// Package service orchestrates the naive and structured embedding strategies
// over one dataset version.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tabvec/internal/domain"
	"tabvec/internal/embedding"
	"tabvec/internal/engine"
	"tabvec/internal/logging"
	"tabvec/internal/metrics"
	"tabvec/internal/reducer"
	"tabvec/internal/reorder"
	"tabvec/internal/schema"
	"tabvec/internal/serializer"
	"tabvec/internal/space"
	"tabvec/internal/vectorstore"
)

const (
	StrategyNaive      = "naive"
	StrategyStructured = "structured"
)

// StoreFactory returns a fresh, empty store for one structured run.
type StoreFactory func(ctx context.Context) (vectorstore.Storage, error)

// Options configures a Pipeline. Embedder, NewStore and Table are required.
type Options struct {
	Embedder embedding.Embedder
	NewStore StoreFactory
	Table    space.Table
	// ModelID is used by the naive path and by text spaces without their own model.
	ModelID    string
	Components int
	// Labels overrides the naive serializer's column labels.
	Labels  []serializer.Label
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// StrategyResult is the outcome of one strategy. When Err is set the other
// fields hold whatever was computed before the failure.
type StrategyResult struct {
	Name       string
	Embeddings domain.Matrix
	Projection *reducer.Projection
	// Index is only set for the structured strategy.
	Index *space.Index
	Err   error
}

// Result holds both strategies for one dataset version.
type Result struct {
	RunID      string
	Dataset    *domain.Dataset
	Naive      StrategyResult
	Structured StrategyResult
}

// Pipeline computes embeddings and projections. It holds no per-run state and
// may be reused for several dataset versions.
type Pipeline struct {
	embedder   embedding.Embedder
	newStore   StoreFactory
	table      space.Table
	modelID    string
	components int
	labels     []serializer.Label
	log        *logging.Logger
	metrics    *metrics.Metrics
}

// NewPipeline validates opts and creates a Pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if opts.NewStore == nil {
		return nil, errors.New("store factory is required")
	}
	if err := opts.Table.Validate(); err != nil {
		return nil, err
	}
	if opts.ModelID == "" {
		return nil, errors.New("model id is required")
	}
	if opts.Components == 0 {
		opts.Components = 3
	}
	if opts.Components < 1 {
		return nil, fmt.Errorf("invalid component count %d", opts.Components)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoopLogger()
	}
	return &Pipeline{
		embedder:   opts.Embedder,
		newStore:   opts.NewStore,
		table:      opts.Table,
		modelID:    opts.ModelID,
		components: opts.Components,
		labels:     opts.Labels,
		log:        opts.Logger,
		metrics:    opts.Metrics,
	}, nil
}

// Run computes both strategies concurrently. A failure in one strategy is
// reported in its StrategyResult and does not stop the other; the returned
// error is only set when ds itself is unusable.
func (p *Pipeline) Run(ctx context.Context, ds *domain.Dataset) (*Result, error) {
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	res := &Result{
		RunID:      uuid.NewString(),
		Dataset:    ds,
		Naive:      StrategyResult{Name: StrategyNaive},
		Structured: StrategyResult{Name: StrategyStructured},
	}
	log := p.log.WithRun(res.RunID)
	log.InfoContext(ctx, "run started", "rows", ds.Len(), "columns", len(ds.Columns), "target", ds.Target)

	var g errgroup.Group
	g.Go(func() error {
		r := &res.Naive
		r.Embeddings, r.Err = p.naive(ctx, log, ds)
		p.finish(ctx, log, r)
		return nil
	})
	g.Go(func() error {
		r := &res.Structured
		r.Embeddings, r.Index, r.Err = p.structured(ctx, log, ds)
		p.finish(ctx, log, r)
		return nil
	})
	_ = g.Wait()
	return res, nil
}

// NaiveEmbeddings serializes every row and embeds the strings with the
// configured model. Row i of the result belongs to row i of ds.
func (p *Pipeline) NaiveEmbeddings(ctx context.Context, ds *domain.Dataset) (domain.Matrix, error) {
	return p.naive(ctx, p.log, ds)
}

// StructuredEmbeddings builds a schema and index for ds, computes the combined
// vectors in a fresh store and restores row order. The store is cleared before
// returning.
func (p *Pipeline) StructuredEmbeddings(ctx context.Context, ds *domain.Dataset) (domain.Matrix, *space.Index, error) {
	return p.structured(ctx, p.log, ds)
}

// Project reduces m to the configured number of principal components.
func (p *Pipeline) Project(m domain.Matrix) (*reducer.Projection, error) {
	return reducer.PCA(m, p.components)
}

func (p *Pipeline) naive(ctx context.Context, log *logging.Logger, ds *domain.Dataset) (domain.Matrix, error) {
	var texts []string
	err := p.stage(ctx, log, StrategyNaive, "serialize", func() error {
		var err error
		texts, err = serializer.NewRowSerializer(p.labels).Serialize(ds)
		return err
	})
	if err != nil {
		return nil, err
	}
	var m domain.Matrix
	err = p.stage(ctx, log, StrategyNaive, "embed", func() error {
		vecs, err := p.embedder.Embed(ctx, texts, p.modelID)
		if err != nil {
			return err
		}
		if err := embedding.CheckShape(vecs, len(texts)); err != nil {
			return err
		}
		m = domain.Matrix(vecs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.metrics.AddRows(StrategyNaive, len(m))
	return m, nil
}

func (p *Pipeline) structured(ctx context.Context, log *logging.Logger, ds *domain.Dataset) (domain.Matrix, *space.Index, error) {
	var (
		sch *schema.Schema
		ix  *space.Index
	)
	err := p.stage(ctx, log, StrategyStructured, "compose", func() error {
		var err error
		if sch, err = schema.FromDataset(ds); err != nil {
			return err
		}
		ix, err = space.Compose(sch, ds.ColumnSet(), p.table, p.modelID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	for _, s := range ix.Skipped() {
		log.DebugContext(ctx, "space skipped", "column", s.Column, "reason", s.Reason)
	}
	if cols := ix.Uncovered(); len(cols) > 0 {
		log.InfoContext(ctx, "columns outside the domain table", "columns", cols)
	}

	store, err := p.newStore(ctx)
	if err != nil {
		return nil, ix, fmt.Errorf("open store: %w", err)
	}
	eng := engine.New(sch, ix, p.embedder, store)
	defer func() {
		if err := eng.Close(context.WithoutCancel(ctx)); err != nil {
			log.WarnContext(ctx, "clear store", "error", err)
		}
	}()

	var col *engine.Collection
	err = p.stage(ctx, log, StrategyStructured, "index", func() error {
		if err := eng.Put(ctx, engine.ParseDataset(ds, sch)); err != nil {
			return err
		}
		var err error
		col, err = eng.GetAllVectors(ctx, ix, sch)
		return err
	})
	if err != nil {
		return nil, ix, err
	}
	var m domain.Matrix
	err = p.stage(ctx, log, StrategyStructured, "reorder", func() error {
		var err error
		m, err = reorder.Stack(col.IDs, col.Vectors, ds.Len())
		return err
	})
	if err != nil {
		return nil, ix, err
	}
	p.metrics.AddRows(StrategyStructured, len(m))
	return m, ix, nil
}

// finish projects a successful strategy and records its outcome.
func (p *Pipeline) finish(ctx context.Context, log *logging.Logger, r *StrategyResult) {
	if r.Err == nil {
		rows, dims := r.Embeddings.Dims()
		log.WithStrategy(r.Name).LogShape(ctx, rows, dims)
		r.Err = p.stage(ctx, log, r.Name, "reduce", func() error {
			var err error
			r.Projection, err = p.Project(r.Embeddings)
			return err
		})
	}
	p.metrics.RecordRun(r.Name, r.Err)
}

func (p *Pipeline) stage(ctx context.Context, log *logging.Logger, strategy, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.metrics.ObserveStage(strategy, name, elapsed)
	log.WithStrategy(strategy).LogStage(ctx, name, elapsed, err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
