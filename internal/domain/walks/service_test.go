package walks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dog-walk-service/internal/domain/dogs"
	"dog-walk-service/internal/domain/users"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu       sync.Mutex
	requests map[string]WalkRequest
	apps     map[string]WalkApplication
}

func newTestRepo() *testRepo {
	return &testRepo{
		requests: map[string]WalkRequest{},
		apps:     map[string]WalkApplication{},
	}
}

func (r *testRepo) CreateRequest(ctx context.Context, req WalkRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.requests[req.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.requests[req.ID] = req
	return nil
}

func (r *testRepo) GetRequest(ctx context.Context, id string) (WalkRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return WalkRequest{}, ErrRepoNotFound
	}
	return req, nil
}

func (r *testRepo) ListOpenRequests(ctx context.Context) ([]WalkRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]WalkRequest, 0)
	for _, req := range r.requests {
		if req.Status == RequestOpen {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *testRepo) UpdateRequestStatus(ctx context.Context, id string, from, to RequestStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return ErrRepoNotFound
	}
	if req.Status != from {
		return ErrRepoConflict
	}
	req.Status = to
	req.UpdatedAt = updatedAt
	r.requests[id] = req
	return nil
}

func (r *testRepo) CreateApplication(ctx context.Context, a WalkApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.apps[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.apps[a.ID] = a
	return nil
}

func (r *testRepo) GetApplication(ctx context.Context, id string) (WalkApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return WalkApplication{}, ErrRepoNotFound
	}
	return a, nil
}

func (r *testRepo) ListApplicationsByRequest(ctx context.Context, requestID string) ([]WalkApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]WalkApplication, 0)
	for _, a := range r.apps {
		if a.RequestID == requestID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) AcceptApplication(ctx context.Context, requestID, applicationID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[requestID]
	if !ok {
		return ErrRepoNotFound
	}
	winner, ok := r.apps[applicationID]
	if !ok || winner.RequestID != requestID {
		return ErrRepoNotFound
	}
	if req.Status != RequestOpen || winner.Status != ApplicationPending {
		return ErrRepoConflict
	}

	winner.Status = ApplicationAccepted
	winner.UpdatedAt = now
	r.apps[applicationID] = winner

	for id, a := range r.apps {
		if a.RequestID != requestID || id == applicationID || a.Status != ApplicationPending {
			continue
		}
		a.Status = ApplicationRejected
		a.UpdatedAt = now
		r.apps[id] = a
	}

	req.Status = RequestAccepted
	req.UpdatedAt = now
	r.requests[requestID] = req
	return nil
}

func (r *testRepo) CountCompletedByWalker(ctx context.Context, walkerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.apps {
		if a.WalkerID != walkerID || a.Status != ApplicationAccepted {
			continue
		}
		if req, ok := r.requests[a.RequestID]; ok && req.Status == RequestCompleted {
			count++
		}
	}
	return count, nil
}

// -------------------------
// Fake lookups
// -------------------------

type fakeDogOwners map[string]string // dogID -> ownerUserID

func (f fakeDogOwners) OwnerOf(ctx context.Context, dogID string) (string, error) {
	owner, ok := f[dogID]
	if !ok {
		return "", errors.New("dog not found")
	}
	return owner, nil
}

type fakeRoles map[string]users.Role // userID -> role

func (f fakeRoles) RoleOf(ctx context.Context, userID string) (users.Role, error) {
	role, ok := f[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return role, nil
}

func newTestService(repo *testRepo) *Service {
	svc := NewService(repo,
		fakeDogOwners{"dog-1": "owner-1", "dog-2": "owner-2"},
		fakeRoles{
			"owner-1":  users.RoleOwner,
			"owner-2":  users.RoleOwner,
			"walker-1": users.RoleWalker,
			"walker-2": users.RoleWalker,
		},
	)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func mustCreateRequest(t *testing.T, svc *Service) WalkRequest {
	t.Helper()
	req, err := svc.CreateRequest(context.Background(), "owner-1", CreateRequestInput{
		DogID:           "dog-1",
		RequestedTime:   time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Location:        "Parklands",
	})
	if err != nil {
		t.Fatalf("CreateRequest error: %v", err)
	}
	return req
}

// -------------------------
// Tests
// -------------------------

func TestService_CreateRequest_StartsOpen(t *testing.T) {
	svc := newTestService(newTestRepo())

	req := mustCreateRequest(t, svc)
	if req.Status != RequestOpen {
		t.Fatalf("expected open, got %s", req.Status)
	}
}

func TestService_CreateRequest_OnlyDogOwner(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.CreateRequest(context.Background(), "owner-2", CreateRequestInput{
		DogID:           "dog-1",
		RequestedTime:   time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Location:        "Parklands",
	})
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = svc.CreateRequest(context.Background(), "owner-1", CreateRequestInput{
		DogID:           "no-such-dog",
		RequestedTime:   time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Location:        "Parklands",
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_CreateRequest_ValidatesInput(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.CreateRequest(context.Background(), "owner-1", CreateRequestInput{
		DogID:           "dog-1",
		RequestedTime:   time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
		DurationMinutes: 0,
		Location:        "Parklands",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for zero duration, got %v", err)
	}
}

func TestService_Apply_CreatesPending(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	a, err := svc.Apply(context.Background(), req.ID, "walker-1")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if a.Status != ApplicationPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}
}

func TestService_Apply_RejectsNonWalker(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	_, err := svc.Apply(context.Background(), req.ID, "owner-2")
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Apply_DuplicateIsConflict(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	if _, err := svc.Apply(context.Background(), req.ID, "walker-1"); err != nil {
		t.Fatalf("Apply #1 error: %v", err)
	}
	_, err := svc.Apply(context.Background(), req.ID, "walker-1")
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestService_Apply_ClosedRequestIsBadState(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	if _, err := svc.Cancel(context.Background(), req.ID, "owner-1"); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	_, err := svc.Apply(context.Background(), req.ID, "walker-1")
	if err != ErrBadState {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestService_Cancel_OnlyOwner(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	_, err := svc.Cancel(context.Background(), req.ID, "walker-1")
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Cancel_FromAccepted(t *testing.T) {
	// El paseo se cayó después de aceptar: cancelar sigue permitido.
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	app, err := svc.Apply(context.Background(), req.ID, "walker-1")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, _, err := svc.AcceptApplication(context.Background(), req.ID, app.ID, "owner-1"); err != nil {
		t.Fatalf("AcceptApplication error: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), req.ID, "owner-1")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if cancelled.Status != RequestCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestService_TerminalStatesAreImmutable(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	if _, err := svc.Cancel(context.Background(), req.ID, "owner-1"); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), req.ID, "owner-1"); err != ErrBadState {
		t.Fatalf("expected ErrBadState on cancel of cancelled, got %v", err)
	}
	if _, err := svc.Complete(context.Background(), req.ID, "owner-1"); err != ErrBadState {
		t.Fatalf("expected ErrBadState on complete of cancelled, got %v", err)
	}
}

func TestService_Complete_OnlyFromAccepted(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	// open -> complete no es una transición válida
	if _, err := svc.Complete(context.Background(), req.ID, "owner-1"); err != ErrBadState {
		t.Fatalf("expected ErrBadState completing open request, got %v", err)
	}

	app, err := svc.Apply(context.Background(), req.ID, "walker-1")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, _, err := svc.AcceptApplication(context.Background(), req.ID, app.ID, "owner-1"); err != nil {
		t.Fatalf("AcceptApplication error: %v", err)
	}

	done, err := svc.Complete(context.Background(), req.ID, "owner-1")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if done.Status != RequestCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}
}

func TestService_Complete_AcceptedWalkerMayComplete(t *testing.T) {
	svc := newTestService(newTestRepo())
	req := mustCreateRequest(t, svc)

	app, err := svc.Apply(context.Background(), req.ID, "walker-1")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, _, err := svc.AcceptApplication(context.Background(), req.ID, app.ID, "owner-1"); err != nil {
		t.Fatalf("AcceptApplication error: %v", err)
	}

	// El walker aceptado puede marcar el paseo como completado.
	if _, err := svc.Complete(context.Background(), req.ID, "walker-1"); err != nil {
		t.Fatalf("Complete by accepted walker error: %v", err)
	}

	// Un tercero no.
	req2 := mustCreateRequest(t, svc)
	app2, err := svc.Apply(context.Background(), req2.ID, "walker-1")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, _, err := svc.AcceptApplication(context.Background(), req2.ID, app2.ID, "owner-1"); err != nil {
		t.Fatalf("AcceptApplication error: %v", err)
	}
	if _, err := svc.Complete(context.Background(), req2.ID, "walker-2"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_CompletedWalksBy_CountsOnlyAcceptedAndCompleted(t *testing.T) {
	svc := newTestService(newTestRepo())

	// Paseo completado por walker-1
	req := mustCreateRequest(t, svc)
	app, _ := svc.Apply(context.Background(), req.ID, "walker-1")
	if _, _, err := svc.AcceptApplication(context.Background(), req.ID, app.ID, "owner-1"); err != nil {
		t.Fatalf("AcceptApplication error: %v", err)
	}
	if _, err := svc.Complete(context.Background(), req.ID, "owner-1"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	// Paseo aceptado pero no completado: no cuenta.
	req2 := mustCreateRequest(t, svc)
	app2, _ := svc.Apply(context.Background(), req2.ID, "walker-1")
	if _, _, err := svc.AcceptApplication(context.Background(), req2.ID, app2.ID, "owner-1"); err != nil {
		t.Fatalf("AcceptApplication error: %v", err)
	}

	n, err := svc.CompletedWalksBy(context.Background(), "walker-1")
	if err != nil {
		t.Fatalf("CompletedWalksBy error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 completed walk, got %d", n)
	}
}

// -------------------------
// Caídas del store
// -------------------------

type downDogOwners struct{}

func (downDogOwners) OwnerOf(ctx context.Context, dogID string) (string, error) {
	return "", dogs.ErrStoreUnavailable
}

// downRepo simula un store que dejó de responder en las lecturas.
type downRepo struct {
	Repository
}

func (downRepo) GetRequest(ctx context.Context, id string) (WalkRequest, error) {
	return WalkRequest{}, ErrStoreUnavailable
}

func TestService_CreateRequest_DogStoreDownIsUnavailable(t *testing.T) {
	svc := NewService(newTestRepo(), downDogOwners{}, fakeRoles{"owner-1": users.RoleOwner})

	_, err := svc.CreateRequest(context.Background(), "owner-1", CreateRequestInput{
		DogID:           "dog-1",
		RequestedTime:   time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Location:        "Parklands",
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("store outage must not read as not found")
	}
}

func TestService_Apply_RequestStoreDownIsUnavailable(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	svc.repo = downRepo{repo}

	_, err := svc.Apply(context.Background(), "req-1", "walker-1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestService_Complete_OwnerLookupDownIsUnavailable(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	req := mustCreateRequest(t, svc)

	app, err := svc.Apply(context.Background(), req.ID, "walker-1")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, _, err := svc.AcceptApplication(context.Background(), req.ID, app.ID, "owner-1"); err != nil {
		t.Fatalf("AcceptApplication error: %v", err)
	}

	// El lookup de dueños se cae después de aceptar: completar no debe
	// degradarse a forbidden.
	svc.dogOwners = downDogOwners{}
	_, err = svc.Complete(context.Background(), req.ID, "owner-1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}
