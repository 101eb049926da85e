package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"dog-walk-service/internal/domain/walks"
)

// walkRepo guarda requests y postulaciones bajo el mismo mutex: el accept
// necesita leer y escribir ambos como una sola unidad.
type walkRepo struct {
	mu            sync.RWMutex
	requestsByID  map[string]walks.WalkRequest
	appsByID      map[string]walks.WalkApplication
	appsByRequest map[string][]string
	appsByWalker  map[string][]string
}

func NewWalkRepo() walks.Repository {
	return &walkRepo{
		requestsByID:  make(map[string]walks.WalkRequest),
		appsByID:      make(map[string]walks.WalkApplication),
		appsByRequest: make(map[string][]string),
		appsByWalker:  make(map[string][]string),
	}
}

func (r *walkRepo) CreateRequest(ctx context.Context, req walks.WalkRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(req.ID) == "" {
		return errors.New("request id required")
	}
	if _, exists := r.requestsByID[req.ID]; exists {
		return errors.New("request already exists")
	}
	r.requestsByID[req.ID] = req
	return nil
}

func (r *walkRepo) GetRequest(ctx context.Context, id string) (walks.WalkRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requestsByID[id]
	if !ok {
		return walks.WalkRequest{}, walks.ErrRepoNotFound
	}
	return req, nil
}

func (r *walkRepo) ListOpenRequests(ctx context.Context) ([]walks.WalkRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]walks.WalkRequest, 0)
	for _, req := range r.requestsByID {
		if req.Status == walks.RequestOpen {
			out = append(out, req)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestedTime.Before(out[j].RequestedTime)
	})

	return out, nil
}

// UpdateRequestStatus es el compare-and-set: el status tiene que seguir
// siendo `from` en el momento del commit.
func (r *walkRepo) UpdateRequestStatus(ctx context.Context, id string, from, to walks.RequestStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requestsByID[id]
	if !ok {
		return walks.ErrRepoNotFound
	}
	if req.Status != from {
		return walks.ErrRepoConflict
	}

	req.Status = to
	req.UpdatedAt = updatedAt
	r.requestsByID[id] = req
	return nil
}

func (r *walkRepo) CreateApplication(ctx context.Context, a walks.WalkApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("application id required")
	}
	if _, exists := r.appsByID[a.ID]; exists {
		return errors.New("application already exists")
	}
	if _, ok := r.requestsByID[a.RequestID]; !ok {
		return walks.ErrRepoNotFound
	}

	r.appsByID[a.ID] = a
	r.appsByRequest[a.RequestID] = append(r.appsByRequest[a.RequestID], a.ID)
	r.appsByWalker[a.WalkerID] = append(r.appsByWalker[a.WalkerID], a.ID)
	return nil
}

func (r *walkRepo) GetApplication(ctx context.Context, id string) (walks.WalkApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appsByID[id]
	if !ok {
		return walks.WalkApplication{}, walks.ErrRepoNotFound
	}
	return a, nil
}

func (r *walkRepo) ListApplicationsByRequest(ctx context.Context, requestID string) ([]walks.WalkApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.appsByRequest[requestID]
	out := make([]walks.WalkApplication, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.appsByID[id]; ok {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// AcceptApplication hace el commit de la arbitración con el write lock
// tomado de punta a punta: request open->accepted, ganadora pending->accepted
// y hermanas pending->rejected, o nada.
func (r *walkRepo) AcceptApplication(ctx context.Context, requestID, applicationID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requestsByID[requestID]
	if !ok {
		return walks.ErrRepoNotFound
	}
	winner, ok := r.appsByID[applicationID]
	if !ok || winner.RequestID != requestID {
		return walks.ErrRepoNotFound
	}

	// Re-chequeo de precondiciones en el momento del commit: si otro accept
	// ganó entre la lectura del service y este lock, acá se corta.
	if req.Status != walks.RequestOpen {
		return walks.ErrRepoConflict
	}
	if winner.Status != walks.ApplicationPending {
		return walks.ErrRepoConflict
	}

	winner.Status = walks.ApplicationAccepted
	winner.UpdatedAt = now
	r.appsByID[applicationID] = winner

	for _, siblingID := range r.appsByRequest[requestID] {
		if siblingID == applicationID {
			continue
		}
		sibling, ok := r.appsByID[siblingID]
		if !ok || sibling.Status != walks.ApplicationPending {
			continue
		}
		sibling.Status = walks.ApplicationRejected
		sibling.UpdatedAt = now
		r.appsByID[siblingID] = sibling
	}

	req.Status = walks.RequestAccepted
	req.UpdatedAt = now
	r.requestsByID[requestID] = req

	return nil
}

func (r *walkRepo) CountCompletedByWalker(ctx context.Context, walkerID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, appID := range r.appsByWalker[walkerID] {
		a, ok := r.appsByID[appID]
		if !ok || a.Status != walks.ApplicationAccepted {
			continue
		}
		req, ok := r.requestsByID[a.RequestID]
		if ok && req.Status == walks.RequestCompleted {
			count++
		}
	}
	return count, nil
}
