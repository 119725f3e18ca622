package embedding

import (
	"context"
	"fmt"
	"sort"

	"tabvec/internal/domain"
)

// Embedder converts a batch of texts into vectors with the named model.
// Row i of the result belongs to texts[i]. Implementations fail with
// domain.ErrModelUnavailable when they cannot resolve modelID.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string, modelID string) ([][]float32, error)
}

// Router dispatches embedding requests to the embedder registered for a model id.
type Router struct {
	routes map[string]Embedder
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]Embedder)}
}

// Handle registers e for modelID, replacing any previous registration.
func (r *Router) Handle(modelID string, e Embedder) *Router {
	r.routes[modelID] = e
	return r
}

// Models returns the registered model ids, sorted.
func (r *Router) Models() []string {
	out := make([]string, 0, len(r.routes))
	for id := range r.routes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Name returns the identifier of this embedder implementation.
func (r *Router) Name() string { return "router" }

// Embed resolves modelID and forwards the batch. The result is checked to hold
// exactly one vector per text, all of the same length.
func (r *Router) Embed(ctx context.Context, texts []string, modelID string) ([][]float32, error) {
	e, ok := r.routes[modelID]
	if !ok {
		return nil, domain.NewModelUnavailable(modelID, nil)
	}
	out, err := e.Embed(ctx, texts, modelID)
	if err != nil {
		return nil, err
	}
	if err := CheckShape(out, len(texts)); err != nil {
		return nil, fmt.Errorf("%s embedder: %w", e.Name(), err)
	}
	return out, nil
}

// CheckShape verifies that vectors holds n vectors of one common, non-zero length.
func CheckShape(vectors [][]float32, n int) error {
	if len(vectors) != n {
		return fmt.Errorf("got %d vectors for %d texts", len(vectors), n)
	}
	if n == 0 {
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("empty embedding")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}
