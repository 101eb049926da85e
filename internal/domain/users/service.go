package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Username string
	Email    string
	Role     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	role := Role(strings.TrimSpace(in.Role))

	if username == "" || email == "" {
		return User{}, ErrInvalidInput
	}
	if !ValidRole(role) {
		return User{}, ErrInvalidInput
	}

	// Username único (el repo también lo refuerza; aquí damos error temprano).
	// Una caída del store no habilita la creación: se propaga tal cual.
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrConflict
	} else if !errors.Is(err, ErrRepoNotFound) {
		return User{}, err
	}

	u := User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Role:      role,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRepoNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) ListByRole(ctx context.Context, role Role) ([]User, error) {
	if !ValidRole(role) {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRole(ctx, role)
}
