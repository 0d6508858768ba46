// Package qdrant backs the vector index with a Qdrant server over gRPC.
//
// Each Build creates a fresh uniquely named collection, so a newly built
// index never disturbs one still being read; Close drops the collection.
// Ranking is delegated to the server and re-ranked client-side by stored
// ordinal, so equal scores inside the returned page keep insertion order.
// Ties straddling the k cutoff follow the server's own order.
package qdrant

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"docrag/internal/domain"
	"docrag/internal/vectorstore"
)

const upsertBatch = 128

type Config struct {
	Host             string
	Port             int
	CollectionPrefix string
}

// Builder connects to one Qdrant server and builds collection-backed indexes.
type Builder struct {
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
	prefix      string
}

func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.CollectionPrefix == "" {
		cfg.CollectionPrefix = "docrag"
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Builder{
		conn:        conn,
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
		prefix:      cfg.CollectionPrefix,
	}, nil
}

// Build creates a collection sized to the vectors and upserts every chunk
// with its ordinal. On any failure the collection is dropped again so a
// failed build leaves nothing behind.
func (b *Builder) Build(ctx context.Context, chunks []string, vectors [][]float32) (vectorstore.Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("build index: %d chunks for %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return &Index{}, nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	name := fmt.Sprintf("%s_%s", b.prefix, uuid.NewString())
	_, err := b.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dim),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant create collection: %w", err)
	}

	wait := true
	for start := 0; start < len(chunks); start += upsertBatch {
		end := min(start+upsertBatch, len(chunks))
		points := make([]*pb.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, &pb.PointStruct{
				Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: uuid.NewString()}},
				Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vectors[i]},
				}},
				Payload: map[string]*pb.Value{
					"chunk":   {Kind: &pb.Value_StringValue{StringValue: chunks[i]}},
					"ordinal": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(i)}},
				},
			})
		}
		if _, err := b.points.Upsert(ctx, &pb.UpsertPoints{
			CollectionName: name,
			Wait:           &wait,
			Points:         points,
		}); err != nil {
			b.drop(name)
			return nil, fmt.Errorf("qdrant upsert: %w", err)
		}
	}

	return &Index{
		points:      b.points,
		collections: b.collections,
		collection:  name,
		size:        len(chunks),
		dim:         dim,
	}, nil
}

func (b *Builder) Close() error {
	return b.conn.Close()
}

func (b *Builder) drop(collection string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = b.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: collection})
}

// Index reads one Qdrant collection created by Build.
type Index struct {
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	size        int
	dim         int
}

func (ix *Index) Len() int       { return ix.size }
func (ix *Index) Dimension() int { return ix.dim }

func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.RankedResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("search: k must be positive, got %d", k)
	}
	if ix.size == 0 {
		return []domain.RankedResult{}, nil
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(vector), ix.dim)
	}
	resp, err := ix.points.Search(ctx, &pb.SearchPoints{
		CollectionName: ix.collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	type scored struct {
		chunk   string
		ordinal int64
		score   float32
	}
	hits := make([]scored, len(resp.Result))
	for i, pt := range resp.Result {
		hits[i] = scored{
			chunk:   pt.Payload["chunk"].GetStringValue(),
			ordinal: pt.Payload["ordinal"].GetIntegerValue(),
			score:   pt.Score,
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].ordinal < hits[j].ordinal
	})

	results := make([]domain.RankedResult, len(hits))
	for i, h := range hits {
		results[i] = domain.RankedResult{Chunk: h.chunk, Score: h.score}
	}
	return results, nil
}

// Close drops the backing collection. An index from an empty build owns no
// collection and closes without touching the server.
func (ix *Index) Close() error {
	if ix.collection == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ix.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: ix.collection}); err != nil {
		return fmt.Errorf("qdrant drop collection: %w", err)
	}
	return nil
}

var (
	_ vectorstore.Builder = (*Builder)(nil)
	_ vectorstore.Index   = (*Index)(nil)
)
