package ratings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dog-walk-service/internal/domain/users"
	"dog-walk-service/internal/domain/walks"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Rating
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Rating{}}
}

func (r *testRepo) Create(ctx context.Context, rt Rating) error {
	if rt.ID == "" {
		return errors.New("repo: id required")
	}
	for _, other := range r.byID {
		if other.RequestID == rt.RequestID && other.RaterUserID == rt.RaterUserID {
			return ErrRepoDuplicate
		}
	}
	r.byID[rt.ID] = rt
	return nil
}

func (r *testRepo) ListByWalker(ctx context.Context, walkerID string) ([]Rating, error) {
	out := make([]Rating, 0)
	for _, rt := range r.byID {
		if rt.WalkerID == walkerID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *testRepo) StatsByWalker(ctx context.Context, walkerID string) (int, float64, error) {
	count, sum := 0, 0
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

// -------------------------
// Fakes de walks y users
// -------------------------

type fakeWalks struct {
	status    map[string]walks.RequestStatus // requestID -> status
	accepted  map[string]string              // requestID -> walkerID
	completed map[string]int                 // walkerID -> completed walks
}

func (f *fakeWalks) StatusOf(ctx context.Context, requestID string) (walks.RequestStatus, error) {
	st, ok := f.status[requestID]
	if !ok {
		return "", errors.New("request not found")
	}
	return st, nil
}

func (f *fakeWalks) AcceptedWalkerOf(ctx context.Context, requestID string) (string, error) {
	w, ok := f.accepted[requestID]
	if !ok {
		return "", errors.New("no accepted application")
	}
	return w, nil
}

func (f *fakeWalks) CompletedWalksBy(ctx context.Context, walkerID string) (int, error) {
	return f.completed[walkerID], nil
}

type fakeUsers map[string]users.User // userID -> user

func (f fakeUsers) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	out := make([]users.User, 0)
	for _, u := range f {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f fakeUsers) RoleOf(ctx context.Context, userID string) (users.Role, error) {
	u, ok := f[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return u.Role, nil
}

func (f fakeUsers) UsernameOf(ctx context.Context, userID string) (string, error) {
	u, ok := f[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return u.Username, nil
}

func newTestService(repo *testRepo, fw *fakeWalks) *Service {
	svc := NewService(repo, fw, fakeUsers{
		"walker-1": {ID: "walker-1", Username: "bobwalker", Role: users.RoleWalker},
		"walker-2": {ID: "walker-2", Username: "daviddog", Role: users.RoleWalker},
		"owner-1":  {ID: "owner-1", Username: "alice123", Role: users.RoleOwner},
	})
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC) }
	return svc
}

func completedWalk() *fakeWalks {
	return &fakeWalks{
		status:    map[string]walks.RequestStatus{"req-1": walks.RequestCompleted},
		accepted:  map[string]string{"req-1": "walker-1"},
		completed: map[string]int{"walker-1": 1},
	}
}

// -------------------------
// Tests
// -------------------------

func TestSubmit_ValueOutOfRange(t *testing.T) {
	svc := newTestService(newTestRepo(), completedWalk())

	for _, v := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), "owner-1", SubmitInput{
			RequestID: "req-1",
			WalkerID:  "walker-1",
			Value:     v,
		})
		if err != ErrInvalidInput {
			t.Fatalf("value %d: expected ErrInvalidInput, got %v", v, err)
		}
	}
}

func TestSubmit_RequiresCompletedRequest(t *testing.T) {
	fw := completedWalk()
	fw.status["req-1"] = walks.RequestAccepted
	svc := newTestService(newTestRepo(), fw)

	_, err := svc.Submit(context.Background(), "owner-1", SubmitInput{
		RequestID: "req-1",
		WalkerID:  "walker-1",
		Value:     5,
	})
	if err != ErrBadState {
		t.Fatalf("expected ErrBadState, got %v", err)
	}
}

func TestSubmit_OnlyAcceptedWalker(t *testing.T) {
	svc := newTestService(newTestRepo(), completedWalk())

	// walker-2 no hizo este paseo
	_, err := svc.Submit(context.Background(), "owner-1", SubmitInput{
		RequestID: "req-1",
		WalkerID:  "walker-2",
		Value:     4,
	})
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmit_DuplicateIsConflict(t *testing.T) {
	svc := newTestService(newTestRepo(), completedWalk())

	if _, err := svc.Submit(context.Background(), "owner-1", SubmitInput{
		RequestID: "req-1",
		WalkerID:  "walker-1",
		Value:     5,
	}); err != nil {
		t.Fatalf("Submit #1 error: %v", err)
	}

	_, err := svc.Submit(context.Background(), "owner-1", SubmitInput{
		RequestID: "req-1",
		WalkerID:  "walker-1",
		Value:     3,
	})
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict on duplicate, got %v", err)
	}
}

func TestSummaryFor_NoRatings_AverageIsAbsent(t *testing.T) {
	fw := completedWalk()
	svc := newTestService(newTestRepo(), fw)

	sum, err := svc.SummaryFor(context.Background(), "walker-2")
	if err != nil {
		t.Fatalf("SummaryFor error: %v", err)
	}
	if sum.TotalRatings != 0 {
		t.Fatalf("expected 0 ratings, got %d", sum.TotalRatings)
	}
	// ausente, nunca 0
	if sum.AverageRating != nil {
		t.Fatalf("expected nil average, got %v", *sum.AverageRating)
	}
}

func TestSummaryFor_RoundsToOneDecimal(t *testing.T) {
	repo := newTestRepo()
	fw := &fakeWalks{
		status: map[string]walks.RequestStatus{
			"req-1": walks.RequestCompleted,
			"req-2": walks.RequestCompleted,
			"req-3": walks.RequestCompleted,
		},
		accepted: map[string]string{
			"req-1": "walker-1",
			"req-2": "walker-1",
			"req-3": "walker-1",
		},
		completed: map[string]int{"walker-1": 3},
	}
	svc := newTestService(repo, fw)

	// 5, 4, 4 => 4.333... => 4.3
	for i, in := range []SubmitInput{
		{RequestID: "req-1", WalkerID: "walker-1", Value: 5},
		{RequestID: "req-2", WalkerID: "walker-1", Value: 4},
		{RequestID: "req-3", WalkerID: "walker-1", Value: 4},
	} {
		if _, err := svc.Submit(context.Background(), "owner-1", in); err != nil {
			t.Fatalf("Submit #%d error: %v", i+1, err)
		}
	}

	sum, err := svc.SummaryFor(context.Background(), "walker-1")
	if err != nil {
		t.Fatalf("SummaryFor error: %v", err)
	}
	if sum.TotalRatings != 3 {
		t.Fatalf("expected 3 ratings, got %d", sum.TotalRatings)
	}
	if sum.AverageRating == nil || *sum.AverageRating != 4.3 {
		t.Fatalf("expected average 4.3, got %v", sum.AverageRating)
	}
	if sum.CompletedWalks != 3 {
		t.Fatalf("expected 3 completed walks, got %d", sum.CompletedWalks)
	}
	if sum.Username != "bobwalker" {
		t.Fatalf("expected username bobwalker, got %q", sum.Username)
	}
}

func TestSummaryFor_UnknownWalker(t *testing.T) {
	svc := newTestService(newTestRepo(), completedWalk())

	if _, err := svc.SummaryFor(context.Background(), "nobody"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Un owner no tiene summary de walker.
	if _, err := svc.SummaryFor(context.Background(), "owner-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for owner, got %v", err)
	}
}

func TestSummaryAll_IncludesWalkersWithoutRatings(t *testing.T) {
	svc := newTestService(newTestRepo(), completedWalk())

	if _, err := svc.Submit(context.Background(), "owner-1", SubmitInput{
		RequestID: "req-1",
		WalkerID:  "walker-1",
		Value:     5,
	}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	items, err := svc.SummaryAll(context.Background())
	if err != nil {
		t.Fatalf("SummaryAll error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 walkers, got %d", len(items))
	}

	byID := map[string]WalkerSummary{}
	for _, it := range items {
		byID[it.WalkerID] = it
	}

	w1 := byID["walker-1"]
	if w1.TotalRatings != 1 || w1.AverageRating == nil || *w1.AverageRating != 5.0 {
		t.Fatalf("walker-1 summary wrong: %+v", w1)
	}
	w2 := byID["walker-2"]
	if w2.TotalRatings != 0 || w2.AverageRating != nil {
		t.Fatalf("walker-2 summary wrong: %+v", w2)
	}
}

// -------------------------
// Caídas del store
// -------------------------

// downWalks simula un store de walks que dejó de responder.
type downWalks struct{}

func (downWalks) StatusOf(ctx context.Context, requestID string) (walks.RequestStatus, error) {
	return "", walks.ErrStoreUnavailable
}

func (downWalks) AcceptedWalkerOf(ctx context.Context, requestID string) (string, error) {
	return "", walks.ErrStoreUnavailable
}

func (downWalks) CompletedWalksBy(ctx context.Context, walkerID string) (int, error) {
	return 0, walks.ErrStoreUnavailable
}

func TestSubmit_WalkStoreDownIsUnavailable(t *testing.T) {
	svc := newTestService(newTestRepo(), completedWalk())
	svc.walks = downWalks{}

	_, err := svc.Submit(context.Background(), "owner-1", SubmitInput{
		RequestID: "req-1",
		WalkerID:  "walker-1",
		Value:     5,
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		t.Fatalf("store outage must not read as not-found/forbidden")
	}
}

func TestSummaryFor_WalkStoreDownIsUnavailable(t *testing.T) {
	svc := newTestService(newTestRepo(), completedWalk())
	svc.walks = downWalks{}

	_, err := svc.SummaryFor(context.Background(), "walker-1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestWriteStoreError_UnavailableIs503(t *testing.T) {
	rec := httptest.NewRecorder()
	writeStoreError(rec, ErrStoreUnavailable)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	writeStoreError(rec, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
