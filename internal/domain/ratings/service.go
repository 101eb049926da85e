package ratings

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"dog-walk-service/internal/domain/users"
	"dog-walk-service/internal/domain/walks"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrBadState         = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// WalkLookup expone lo que ratings necesita saber de un request sin importar
// el wiring completo de walks (rompe ciclos).
type WalkLookup interface {
	StatusOf(ctx context.Context, requestID string) (walks.RequestStatus, error)
	AcceptedWalkerOf(ctx context.Context, requestID string) (string, error)
	CompletedWalksBy(ctx context.Context, walkerID string) (int, error)
}

type Service struct {
	repo  Repository
	walks WalkLookup
	users UserDirectory
	now   func() time.Time
}

func NewService(repo Repository, walkLookup WalkLookup, userDir UserDirectory) *Service {
	return &Service{
		repo:  repo,
		walks: walkLookup,
		users: userDir,
		now:   time.Now,
	}
}

type SubmitInput struct {
	RequestID string
	WalkerID  string
	Value     int
	Comment   string
}

// Submit registra la calificación de un paseo completado.
// Solo se califica al walker cuya postulación quedó accepted, y cada
// (request, rater) califica una sola vez: el duplicado falla con conflict.
func (s *Service) Submit(ctx context.Context, raterUserID string, in SubmitInput) (Rating, error) {
	raterUserID = strings.TrimSpace(raterUserID)
	requestID := strings.TrimSpace(in.RequestID)
	walkerID := strings.TrimSpace(in.WalkerID)

	if raterUserID == "" || requestID == "" || walkerID == "" {
		return Rating{}, ErrInvalidInput
	}
	if in.Value < MinValue || in.Value > MaxValue {
		return Rating{}, ErrInvalidInput
	}

	status, err := s.walks.StatusOf(ctx, requestID)
	if err != nil {
		// Una caída del store de walks no es "request inexistente".
		if errors.Is(err, walks.ErrStoreUnavailable) {
			return Rating{}, ErrStoreUnavailable
		}
		return Rating{}, ErrNotFound
	}
	if status != walks.RequestCompleted {
		return Rating{}, ErrBadState
	}

	accepted, err := s.walks.AcceptedWalkerOf(ctx, requestID)
	if err != nil {
		if errors.Is(err, walks.ErrStoreUnavailable) {
			return Rating{}, ErrStoreUnavailable
		}
		return Rating{}, ErrForbidden
	}
	if accepted != walkerID {
		return Rating{}, ErrForbidden
	}

	rt := Rating{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		WalkerID:    walkerID,
		RaterUserID: raterUserID,
		Value:       in.Value,
		Comment:     strings.TrimSpace(in.Comment),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, rt); err != nil {
		if errors.Is(err, ErrRepoDuplicate) {
			return Rating{}, ErrConflict
		}
		return Rating{}, err
	}
	return rt, nil
}

// SummaryFor calcula el agregado de un walker. Es solo lectura y tolera
// lecturas levemente desfasadas: no hay transacción que abarque los conteos.
func (s *Service) SummaryFor(ctx context.Context, walkerID string) (WalkerSummary, error) {
	walkerID = strings.TrimSpace(walkerID)
	if walkerID == "" {
		return WalkerSummary{}, ErrInvalidInput
	}

	role, err := s.users.RoleOf(ctx, walkerID)
	if err != nil {
		if errors.Is(err, users.ErrStoreUnavailable) {
			return WalkerSummary{}, ErrStoreUnavailable
		}
		return WalkerSummary{}, ErrNotFound
	}
	if role != users.RoleWalker {
		return WalkerSummary{}, ErrNotFound
	}
	username, err := s.users.UsernameOf(ctx, walkerID)
	if err != nil {
		if errors.Is(err, users.ErrStoreUnavailable) {
			return WalkerSummary{}, ErrStoreUnavailable
		}
		return WalkerSummary{}, ErrNotFound
	}

	count, avg, err := s.repo.StatsByWalker(ctx, walkerID)
	if err != nil {
		return WalkerSummary{}, err
	}

	completed, err := s.walks.CompletedWalksBy(ctx, walkerID)
	if err != nil {
		if errors.Is(err, walks.ErrStoreUnavailable) {
			return WalkerSummary{}, ErrStoreUnavailable
		}
		return WalkerSummary{}, err
	}

	out := WalkerSummary{
		WalkerID:       walkerID,
		Username:       username,
		TotalRatings:   count,
		CompletedWalks: completed,
	}
	if count > 0 {
		// como ROUND(AVG(rating), 1) en el reporte original
		rounded := math.Round(avg*10) / 10
		out.AverageRating = &rounded
	}
	return out, nil
}
