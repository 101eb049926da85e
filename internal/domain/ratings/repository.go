package ratings

import (
	"context"
	"errors"
)

var (
	ErrRepoNotFound = errors.New("ratings repo: not found")

	// ErrRepoDuplicate: ya existe un rating para ese (request, rater).
	ErrRepoDuplicate = errors.New("ratings repo: duplicate")
)

type Repository interface {
	// Create falla con ErrRepoDuplicate si el par (RequestID, RaterUserID)
	// ya calificó; la política es rechazar, no sobrescribir.
	Create(ctx context.Context, rt Rating) error
	ListByWalker(ctx context.Context, walkerID string) ([]Rating, error)

	// StatsByWalker devuelve count y promedio crudo (sin redondear).
	// avg solo es significativo cuando count > 0.
	StatsByWalker(ctx context.Context, walkerID string) (count int, avg float64, err error)
}
