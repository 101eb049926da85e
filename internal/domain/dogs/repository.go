package dogs

import (
	"context"
	"errors"
)

// Sentinels del storage: el service distingue "no existe" de una caída
// del store, que nunca se colapsa en not-found.
var (
	ErrRepoNotFound = errors.New("dogs repo: not found")

	ErrStoreUnavailable = errors.New("store unavailable")
)

type Repository interface {
	Create(ctx context.Context, d Dog) error
	GetByID(ctx context.Context, id string) (Dog, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Dog, error)
	ListAll(ctx context.Context) ([]Dog, error)
}
