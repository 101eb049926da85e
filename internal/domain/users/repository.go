package users

import (
	"context"
	"errors"
)

// Sentinels del storage: el service distingue "no existe" de una caída
// del store, que nunca se colapsa en not-found.
var (
	ErrRepoNotFound = errors.New("users repo: not found")

	ErrStoreUnavailable = errors.New("store unavailable")
)

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	Count(ctx context.Context) (int, error)
}
