package walks

import (
	"context"
	"errors"
	"strings"
	"time"

	"dog-walk-service/internal/domain/dogs"
	"dog-walk-service/internal/domain/users"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

// DogOwnerLookup desacopla el wiring del paquete dogs.
type DogOwnerLookup interface {
	OwnerOf(ctx context.Context, dogID string) (string, error)
}

// lookupErr normaliza los errores de los lookups cruzados: una caída del
// store de dogs/users se reporta como tal, nunca como not-found.
func lookupErr(err error, fallback error) error {
	if errors.Is(err, dogs.ErrStoreUnavailable) || errors.Is(err, users.ErrStoreUnavailable) {
		return ErrStoreUnavailable
	}
	return fallback
}

// UserRoleLookup evita importar el paquete users desde los checks de rol.
type UserRoleLookup interface {
	RoleOf(ctx context.Context, userID string) (users.Role, error)
}

type Service struct {
	repo      Repository
	dogOwners DogOwnerLookup
	roles     UserRoleLookup
	now       func() time.Time
}

func NewService(repo Repository, dogOwners DogOwnerLookup, roles UserRoleLookup) *Service {
	return &Service{
		repo:      repo,
		dogOwners: dogOwners,
		roles:     roles,
		now:       time.Now,
	}
}

type CreateRequestInput struct {
	DogID           string
	RequestedTime   time.Time
	DurationMinutes int
	Location        string
}

func (s *Service) CreateRequest(ctx context.Context, callerID string, in CreateRequestInput) (WalkRequest, error) {
	callerID = strings.TrimSpace(callerID)
	dogID := strings.TrimSpace(in.DogID)
	location := strings.TrimSpace(in.Location)

	if callerID == "" || dogID == "" {
		return WalkRequest{}, ErrInvalidInput
	}
	if in.RequestedTime.IsZero() || in.DurationMinutes <= 0 || location == "" {
		return WalkRequest{}, ErrInvalidInput
	}

	ownerID, err := s.dogOwners.OwnerOf(ctx, dogID)
	if err != nil {
		return WalkRequest{}, lookupErr(err, ErrNotFound)
	}
	if ownerID != callerID {
		return WalkRequest{}, ErrForbidden
	}

	now := s.now()
	r := WalkRequest{
		ID:              uuid.NewString(),
		DogID:           dogID,
		RequestedTime:   in.RequestedTime,
		DurationMinutes: in.DurationMinutes,
		Location:        location,
		Status:          RequestOpen,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateRequest(ctx, r); err != nil {
		return WalkRequest{}, err
	}
	return r, nil
}

func (s *Service) GetRequest(ctx context.Context, id string) (WalkRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return WalkRequest{}, ErrNotFound
	}
	r, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRepoNotFound) {
			return WalkRequest{}, ErrNotFound
		}
		return WalkRequest{}, err
	}
	return r, nil
}

func (s *Service) ListOpen(ctx context.Context) ([]WalkRequest, error) {
	return s.repo.ListOpenRequests(ctx)
}

func (s *Service) ListApplications(ctx context.Context, requestID string) ([]WalkApplication, error) {
	if _, err := s.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return s.repo.ListApplicationsByRequest(ctx, requestID)
}

// Apply crea una postulación pending de un walker a un request open.
func (s *Service) Apply(ctx context.Context, requestID, walkerID string) (WalkApplication, error) {
	requestID = strings.TrimSpace(requestID)
	walkerID = strings.TrimSpace(walkerID)
	if requestID == "" || walkerID == "" {
		return WalkApplication{}, ErrInvalidInput
	}

	r, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return WalkApplication{}, err
	}
	if r.Status != RequestOpen {
		return WalkApplication{}, ErrBadState
	}

	role, err := s.roles.RoleOf(ctx, walkerID)
	if err != nil {
		return WalkApplication{}, lookupErr(err, ErrNotFound)
	}
	if role != users.RoleWalker {
		return WalkApplication{}, ErrForbidden
	}

	// Dedup: un walker no postula dos veces al mismo request mientras
	// tenga una postulación pending o accepted viva.
	existing, err := s.repo.ListApplicationsByRequest(ctx, requestID)
	if err != nil {
		return WalkApplication{}, err
	}
	for _, a := range existing {
		if a.WalkerID == walkerID && a.Status != ApplicationRejected {
			return WalkApplication{}, ErrConflict
		}
	}

	now := s.now()
	a := WalkApplication{
		ID:        uuid.NewString(),
		RequestID: requestID,
		WalkerID:  walkerID,
		Status:    ApplicationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateApplication(ctx, a); err != nil {
		return WalkApplication{}, err
	}
	return a, nil
}

// Cancel pasa el request a cancelled. Vale desde open y también desde
// accepted (el paseo se cayó); los estados terminales son inmutables.
func (s *Service) Cancel(ctx context.Context, requestID, callerID string) (WalkRequest, error) {
	r, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return WalkRequest{}, err
	}

	if err := s.authorizeOwner(ctx, r, callerID); err != nil {
		return WalkRequest{}, err
	}
	if r.Status.Terminal() {
		return WalkRequest{}, ErrBadState
	}

	// Compare-and-set sobre el estado leído: si otra transición ganó en el
	// medio, el repo devuelve conflict y no tocamos nada.
	if err := s.repo.UpdateRequestStatus(ctx, requestID, r.Status, RequestCancelled, s.now()); err != nil {
		if errors.Is(err, ErrRepoConflict) {
			return WalkRequest{}, ErrConflict
		}
		return WalkRequest{}, err
	}

	return s.GetRequest(ctx, requestID)
}

// Complete pasa el request accepted -> completed. Pueden hacerlo el dueño
// del perro o el walker aceptado.
func (s *Service) Complete(ctx context.Context, requestID, callerID string) (WalkRequest, error) {
	r, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return WalkRequest{}, err
	}

	if r.Status != RequestAccepted {
		return WalkRequest{}, ErrBadState
	}

	if err := s.authorizeOwner(ctx, r, callerID); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return WalkRequest{}, err
		}
		// No es el dueño: ¿es el walker aceptado?
		walkerID, werr := s.AcceptedWalkerOf(ctx, requestID)
		if werr != nil {
			if errors.Is(werr, ErrStoreUnavailable) {
				return WalkRequest{}, werr
			}
			return WalkRequest{}, ErrForbidden
		}
		if walkerID != strings.TrimSpace(callerID) {
			return WalkRequest{}, ErrForbidden
		}
	}

	if err := s.repo.UpdateRequestStatus(ctx, requestID, RequestAccepted, RequestCompleted, s.now()); err != nil {
		if errors.Is(err, ErrRepoConflict) {
			return WalkRequest{}, ErrConflict
		}
		return WalkRequest{}, err
	}

	return s.GetRequest(ctx, requestID)
}

// AcceptedWalkerOf devuelve el walker de la postulación accepted del request.
// Lo usa ratings para validar a quién se califica (rompe ciclos).
func (s *Service) AcceptedWalkerOf(ctx context.Context, requestID string) (string, error) {
	apps, err := s.repo.ListApplicationsByRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	for _, a := range apps {
		if a.Status == ApplicationAccepted {
			return a.WalkerID, nil
		}
	}
	return "", ErrNotFound
}

// StatusOf expone el estado actual del request (para ratings).
func (s *Service) StatusOf(ctx context.Context, requestID string) (RequestStatus, error) {
	r, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	return r.Status, nil
}

// CompletedWalksBy expone el conteo de paseos completados de un walker.
func (s *Service) CompletedWalksBy(ctx context.Context, walkerID string) (int, error) {
	return s.repo.CountCompletedByWalker(ctx, walkerID)
}

func (s *Service) authorizeOwner(ctx context.Context, r WalkRequest, callerID string) error {
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return ErrForbidden
	}
	ownerID, err := s.dogOwners.OwnerOf(ctx, r.DogID)
	if err != nil {
		return lookupErr(err, ErrNotFound)
	}
	if ownerID != callerID {
		return ErrForbidden
	}
	return nil
}
