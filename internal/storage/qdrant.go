// Package storage persists embedded chunks in Qdrant and answers
// nearest-neighbor queries over them.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Store wraps the Qdrant client with connection management and lazy
// collection creation.
type Store struct {
	client     *qdrant.Client
	collection string

	mu      sync.Mutex
	ensured bool
}

// NewStore creates a Qdrant-backed store and verifies connectivity with a
// retried health check, failing fast if the server is unreachable. An empty
// collection name falls back to DefaultCollection.
func NewStore(host string, port int, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &Store{
		client:     client,
		collection: collection,
	}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
	}

	return s, nil
}

// healthCheckWithRetry probes Qdrant with exponential backoff.
func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (s *Store) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// ensureCollection creates the collection on first use. Idempotent; callers
// never provision explicitly.
func (s *Store) ensureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}

	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == s.collection {
			s.ensured = true
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     VectorDimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}

	s.ensured = true
	return nil
}

// Close closes the Qdrant client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// pointID derives the deterministic point id for a chunk from its source
// and position, so re-inserting an unchanged source overwrites in place.
func pointID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s_%d", source, index)).String()
}

// Upsert stores aligned (vector, chunk, metadata) triples. The three slices
// must be equal length; a mismatch is a precondition failure, never a
// silent truncation. Ids are deterministic per (source, position), giving
// idempotent re-indexing.
func (s *Store) Upsert(ctx context.Context, vectors [][]float32, chunks []string, metas []Metadata) error {
	if len(vectors) != len(chunks) || len(chunks) != len(metas) {
		return fmt.Errorf("%w: %d vectors, %d chunks, %d metadata",
			ErrLengthMismatch, len(vectors), len(chunks), len(metas))
	}
	if len(vectors) == 0 {
		return nil
	}
	for i, v := range vectors {
		if len(v) != VectorDimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), VectorDimension)
		}
	}

	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	// Batch upserts in groups of 100.
	batchSize := 100
	for start := 0; start < len(vectors); start += batchSize {
		end := min(start+batchSize, len(vectors))

		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(pointID(metas[i].Source, metas[i].ChunkIndex)),
				Vectors: qdrant.NewVectors(vectors[i]...),
				Payload: qdrant.NewValueMap(map[string]any{
					"chunk":        chunks[i],
					"source":       metas[i].Source,
					"chunk_index":  metas[i].ChunkIndex,
					"total_chunks": metas[i].TotalChunks,
				}),
			})
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
	}

	return nil
}

// upsertWithRetry performs one upsert call with exponential backoff.
func (s *Store) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Query returns up to k chunks nearest to the query vector, ordered by
// descending cosine similarity. A fresh or empty collection yields an empty
// slice, not an error.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error) {
	if len(vector) != VectorDimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), VectorDimension)
	}
	if k <= 0 {
		k = 3
	}

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}

	hits := make([]ScoredChunk, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		hits = append(hits, ScoredChunk{
			Chunk: payload["chunk"].GetStringValue(),
			Metadata: Metadata{
				Source:      payload["source"].GetStringValue(),
				ChunkIndex:  int(payload["chunk_index"].GetIntegerValue()),
				TotalChunks: int(payload["total_chunks"].GetIntegerValue()),
			},
			Score: float64(result.Score),
		})
	}

	return hits, nil
}

// Count reports how many points the collection holds.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return 0, err
	}

	collection, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	return collection.GetPointsCount(), nil
}
