package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"dog-walk-service/internal/domain/ratings"
)

type ratingRepo struct {
	mu   sync.RWMutex
	byID map[string]ratings.Rating
}

func NewRatingRepo() ratings.Repository {
	return &ratingRepo{
		byID: make(map[string]ratings.Rating),
	}
}

func (r *ratingRepo) Create(ctx context.Context, rt ratings.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rt.ID) == "" {
		return errors.New("rating id required")
	}
	if _, exists := r.byID[rt.ID]; exists {
		return errors.New("rating already exists")
	}
	// Unicidad (request, rater): rechazar, no sobrescribir.
	for _, other := range r.byID {
		if other.RequestID == rt.RequestID && other.RaterUserID == rt.RaterUserID {
			return ratings.ErrRepoDuplicate
		}
	}
	r.byID[rt.ID] = rt
	return nil
}

func (r *ratingRepo) ListByWalker(ctx context.Context, walkerID string) ([]ratings.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ratings.Rating, 0)
	for _, rt := range r.byID {
		if rt.WalkerID == walkerID {
			out = append(out, rt)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *ratingRepo) StatsByWalker(ctx context.Context, walkerID string) (int, float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	sum := 0
	for _, rt := range r.byID {
		if rt.WalkerID == walkerID {
			count++
			sum += rt.Value
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return count, float64(sum) / float64(count), nil
}
