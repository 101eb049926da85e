package dogs

import (
	"context"
	"errors"
	"strings"
	"time"

	"dog-walk-service/internal/domain/users"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

// UserRoleLookup evita importar el paquete users directamente desde los puntos
// donde solo necesitamos el rol (mismo patrón que OwnerOf).
type UserRoleLookup interface {
	RoleOf(ctx context.Context, userID string) (users.Role, error)
}

type Service struct {
	repo  Repository
	roles UserRoleLookup
	now   func() time.Time
}

func NewService(repo Repository, roles UserRoleLookup) *Service {
	return &Service{
		repo:  repo,
		roles: roles,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name string
	Size string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Dog, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	name := strings.TrimSpace(in.Name)
	size := Size(strings.TrimSpace(in.Size))

	if ownerUserID == "" || name == "" {
		return Dog{}, ErrInvalidInput
	}
	if !ValidSize(size) {
		return Dog{}, ErrInvalidInput
	}

	role, err := s.roles.RoleOf(ctx, ownerUserID)
	if err != nil {
		// Una caída del store de users no es "dueño inexistente".
		if errors.Is(err, users.ErrStoreUnavailable) {
			return Dog{}, ErrStoreUnavailable
		}
		return Dog{}, ErrNotFound
	}
	// Solo cuentas owner registran perros.
	if role != users.RoleOwner {
		return Dog{}, ErrForbidden
	}

	now := s.now()
	d := Dog{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        name,
		Size:        size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Dog{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Dog{}, ErrNotFound
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRepoNotFound) {
			return Dog{}, ErrNotFound
		}
		return Dog{}, err
	}
	return d, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Dog, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) ListAll(ctx context.Context) ([]Dog, error) {
	return s.repo.ListAll(ctx)
}
