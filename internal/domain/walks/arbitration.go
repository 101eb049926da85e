package walks

import (
	"context"
	"errors"
	"strings"
)

// AcceptApplication decide la postulación ganadora de un request.
//
// La decisión final (request todavía open, postulación todavía pending) vive
// dentro del commit atómico del repo: dos accepts concurrentes sobre el mismo
// request producen exactamente un ganador y el perdedor recibe ErrConflict,
// nunca dos postulaciones accepted ni un estado pisado en silencio.
func (s *Service) AcceptApplication(ctx context.Context, requestID, applicationID, callerID string) (WalkRequest, WalkApplication, error) {
	requestID = strings.TrimSpace(requestID)
	applicationID = strings.TrimSpace(applicationID)
	if requestID == "" || applicationID == "" {
		return WalkRequest{}, WalkApplication{}, ErrInvalidInput
	}

	r, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return WalkRequest{}, WalkApplication{}, err
	}

	if err := s.authorizeOwner(ctx, r, callerID); err != nil {
		return WalkRequest{}, WalkApplication{}, err
	}
	if r.Status.Terminal() {
		return WalkRequest{}, WalkApplication{}, ErrBadState
	}
	if r.Status != RequestOpen {
		// Ya hay una postulación aceptada: otro accept ganó antes.
		return WalkRequest{}, WalkApplication{}, ErrConflict
	}

	a, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, ErrRepoNotFound) {
			return WalkRequest{}, WalkApplication{}, ErrNotFound
		}
		return WalkRequest{}, WalkApplication{}, err
	}
	if a.RequestID != requestID {
		return WalkRequest{}, WalkApplication{}, ErrNotFound
	}

	// Commit atómico: el repo re-verifica open/pending en el momento del
	// commit y rechaza las hermanas pending en la misma unidad.
	if err := s.repo.AcceptApplication(ctx, requestID, applicationID, s.now()); err != nil {
		if errors.Is(err, ErrRepoConflict) {
			return WalkRequest{}, WalkApplication{}, ErrConflict
		}
		if errors.Is(err, ErrRepoNotFound) {
			return WalkRequest{}, WalkApplication{}, ErrNotFound
		}
		return WalkRequest{}, WalkApplication{}, err
	}

	updatedReq, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return WalkRequest{}, WalkApplication{}, err
	}
	updatedApp, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return WalkRequest{}, WalkApplication{}, err
	}
	return updatedReq, updatedApp, nil
}
