// Package qdrant provides a vector index backed by a Qdrant server,
// accessed over gRPC. The target collection must use the Euclid
// distance metric so that scores are comparable to the in-memory
// index's distances.
package qdrant

import (
	"context"
	"fmt"
	"sort"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a Qdrant-backed implementation of driven.VectorIndex.
type Index struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
	dimension  int
}

// New connects to a Qdrant server and returns an index over the given
// collection. The collection is expected to exist with Euclid metric
// and the given vector size.
func New(addr, collection string, dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d: %w", dimension, domain.ErrInvalidInput)
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Index{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
		dimension:  dimension,
	}, nil
}

func (i *Index) check(id string, vector []float32) error {
	if id == "" {
		return fmt.Errorf("vector id is empty: %w", domain.ErrInvalidInput)
	}
	if len(vector) != i.dimension {
		return fmt.Errorf("vector has dimension %d, index expects %d: %w",
			len(vector), i.dimension, domain.ErrInvalidInput)
	}
	return nil
}

func pointID(id string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
}

// exists reports whether the collection already holds the given id.
func (i *Index) exists(ctx context.Context, id string) (bool, error) {
	resp, err := i.points.Get(ctx, &pb.GetPoints{
		CollectionName: i.collection,
		Ids:            []*pb.PointId{pointID(id)},
	})
	if err != nil {
		return false, fmt.Errorf("qdrant get: %w", err)
	}
	return len(resp.Result) > 0, nil
}

func (i *Index) upsert(ctx context.Context, points []*pb.PointStruct) error {
	wait := true
	_, err := i.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: i.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Add stores a single vector under the given id.
func (i *Index) Add(ctx context.Context, id string, vector []float32) error {
	if err := i.check(id, vector); err != nil {
		return err
	}
	taken, err := i.exists(ctx, id)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("vector id %q: %w", id, domain.ErrAlreadyExists)
	}
	return i.upsert(ctx, []*pb.PointStruct{{
		Id:      pointID(id),
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vector}}},
	}})
}

// AddBatch stores several vectors in one call. Every id and vector is
// validated before anything is written, so a rejected batch leaves the
// collection untouched.
func (i *Index) AddBatch(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("got %d ids for %d vectors: %w", len(ids), len(vectors), domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(ids))
	for n, id := range ids {
		if err := i.check(id, vectors[n]); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate vector id %q in batch: %w", id, domain.ErrInvalidInput)
		}
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		taken, err := i.exists(ctx, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("vector id %q: %w", id, domain.ErrAlreadyExists)
		}
	}

	points := make([]*pb.PointStruct, len(ids))
	for n, id := range ids {
		points[n] = &pb.PointStruct{
			Id:      pointID(id),
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vectors[n]}}},
		}
	}
	return i.upsert(ctx, points)
}

// Get retrieves the stored vector for an id.
func (i *Index) Get(ctx context.Context, id string) ([]float32, error) {
	withVectors := true
	resp, err := i.points.Get(ctx, &pb.GetPoints{
		CollectionName: i.collection,
		Ids:            []*pb.PointId{pointID(id)},
		WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: withVectors}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant get: %w", err)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("vector id %q: %w", id, domain.ErrNotFound)
	}
	data := resp.Result[0].GetVectors().GetVector().GetData()
	out := make([]float32, len(data))
	copy(out, data)
	return out, nil
}

// Search returns up to k nearest neighbours of the query. With Euclid
// metric Qdrant reports the distance as the score, ascending, so the
// maxDistance cutoff applies directly. A negative maxDistance disables
// the cutoff.
func (i *Index) Search(ctx context.Context, query []float32, k int, maxDistance float64) ([]driven.VectorHit, error) {
	if len(query) != i.dimension {
		return nil, fmt.Errorf("query has dimension %d, index expects %d: %w",
			len(query), i.dimension, domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}

	resp, err := i.points.Search(ctx, &pb.SearchPoints{
		CollectionName: i.collection,
		Vector:         query,
		Limit:          uint64(k),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, pt := range resp.Result {
		hits = append(hits, driven.VectorHit{
			ChunkID:  pt.GetId().GetUuid(),
			Distance: float64(pt.GetScore()),
		})
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })
	if maxDistance >= 0 {
		cut := len(hits)
		for n, hit := range hits {
			if hit.Distance > maxDistance {
				cut = n
				break
			}
		}
		hits = hits[:cut]
	}
	return hits, nil
}

func (i *Index) delete(ctx context.Context, ids []*pb.PointId) error {
	wait := true
	_, err := i.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: i.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{Points: &pb.PointsIdsList{Ids: ids}},
		},
		Wait: &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	return nil
}

// Delete removes a vector and reports whether it existed.
func (i *Index) Delete(ctx context.Context, id string) (bool, error) {
	taken, err := i.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !taken {
		return false, nil
	}
	if err := i.delete(ctx, []*pb.PointId{pointID(id)}); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteBatch removes every listed id. Absent ids are ignored.
func (i *Index) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	points := make([]*pb.PointId, len(ids))
	for n, id := range ids {
		points[n] = pointID(id)
	}
	return i.delete(ctx, points)
}

// Close releases the underlying gRPC connection.
func (i *Index) Close() error {
	return i.conn.Close()
}
