package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"tabvec/internal/domain"
)

// Config contains connection details for a Qdrant server.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
	// CollectionPrefix names the per-run collections: <prefix>-<uuid>.
	CollectionPrefix string
}

// Connect opens a gRPC client for cfg.
func Connect(cfg Config) (*qdrant.Client, error) {
	port := cfg.Port
	if port == 0 {
		port = 6334
	}
	return qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
}

// Storage keeps one run's vectors in a dedicated Qdrant collection that is
// created by Init and dropped by Clear.
type Storage struct {
	client     *qdrant.Client
	collection string
	dimension  int
	count      int
	created    bool
}

// NewStorage creates a storage bound to a fresh, uniquely named collection.
func NewStorage(client *qdrant.Client, cfg Config) *Storage {
	prefix := cfg.CollectionPrefix
	if prefix == "" {
		prefix = "tabvec"
	}
	return &Storage{
		client:     client,
		collection: fmt.Sprintf("%s-%s", prefix, uuid.NewString()),
	}
}

// Collection returns the name of the backing collection.
func (s *Storage) Collection() string { return s.collection }

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	s.count = 0
	// Dot distance keeps vectors exactly as written; Cosine would renormalize them.
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Dot,
		}),
	})
	if err != nil {
		return err
	}
	s.created = true
	return nil
}

func (s *Storage) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(records))
	for i, r := range records {
		if r.ID < 0 {
			return fmt.Errorf("negative row id %d", r.ID)
		}
		if len(r.Vector) != s.dimension {
			return fmt.Errorf("vector %d: dimension %d, want %d", r.ID, len(r.Vector), s.dimension)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(r.ID)),
			Vectors: qdrant.NewVectors(r.Vector...),
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return err
	}
	s.count += len(records)
	return nil
}

func (s *Storage) All(ctx context.Context) ([]domain.VectorRecord, error) {
	if s.count == 0 {
		return nil, nil
	}
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(s.count)),
		WithVectors:    qdrant.NewWithVectors(true),
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.VectorRecord, 0, len(points))
	for _, p := range points {
		out = append(out, domain.VectorRecord{
			ID:     int(p.GetId().GetNum()),
			Vector: p.GetVectors().GetVector().GetData(),
		})
	}
	return out, nil
}

// Clear drops the run's collection. It is a no-op before Init.
func (s *Storage) Clear(ctx context.Context) error {
	s.count = 0
	if !s.created {
		return nil
	}
	s.created = false
	return s.client.DeleteCollection(ctx, s.collection)
}
