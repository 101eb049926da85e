package ratings

import (
	"context"
	"errors"

	"dog-walk-service/internal/domain/users"
)

// UserDirectory expone lo mínimo de users que el summary necesita.
type UserDirectory interface {
	ListByRole(ctx context.Context, role users.Role) ([]users.User, error)
	RoleOf(ctx context.Context, userID string) (users.Role, error)
	UsernameOf(ctx context.Context, userID string) (string, error)
}

// SummaryAll calcula el agregado de cada cuenta walker registrada.
// Es el reporte público de performance: walkers sin ratings salen con
// average_rating ausente, no con 0.
func (s *Service) SummaryAll(ctx context.Context) ([]WalkerSummary, error) {
	walkers, err := s.users.ListByRole(ctx, users.RoleWalker)
	if err != nil {
		if errors.Is(err, users.ErrStoreUnavailable) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}

	out := make([]WalkerSummary, 0, len(walkers))
	for _, u := range walkers {
		sum, err := s.SummaryFor(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}
