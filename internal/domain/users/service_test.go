package users

import (
	"context"
	"errors"
	"testing"
)

type testRepo struct {
	byID map[string]User
	err  error // si está seteado, toda operación falla con él
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if r.err != nil {
		return r.err
	}
	r.byID[u.ID] = u
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	if r.err != nil {
		return User{}, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	if r.err != nil {
		return User{}, r.err
	}
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrRepoNotFound
}

func (r *testRepo) ListByRole(ctx context.Context, role Role) ([]User, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]User, 0)
	for _, u := range r.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *testRepo) Count(ctx context.Context) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return len(r.byID), nil
}

func TestCreate_DuplicateUsernameIsConflict(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), CreateInput{Username: "alice123", Email: "alice@example.com", Role: "owner"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(context.Background(), CreateInput{Username: "alice123", Email: "otra@example.com", Role: "walker"})
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreate_StoreDownDoesNotCreate(t *testing.T) {
	repo := newTestRepo()
	repo.err = ErrStoreUnavailable
	svc := NewService(repo)

	// La caída del store no se confunde con "username libre": el chequeo
	// de unicidad falla y la creación no procede.
	_, err := svc.Create(context.Background(), CreateInput{Username: "alice123", Email: "alice@example.com", Role: "owner"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if err == ErrConflict {
		t.Fatalf("store outage must not read as conflict")
	}
}

func TestGetByID_DistinguishesOutageFromMissing(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.GetByID(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	repo.err = ErrStoreUnavailable
	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}
