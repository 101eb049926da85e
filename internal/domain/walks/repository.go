package walks

import (
	"context"
	"errors"
	"time"
)

// Errores que los adapters de storage devuelven para que el service
// distinga "no existe" de "perdiste la carrera".
var (
	ErrRepoNotFound = errors.New("walks repo: not found")
	ErrRepoConflict = errors.New("walks repo: conflict")

	// ErrStoreUnavailable: el store no respondió dentro del plazo; la
	// operación se considera no realizada (sin commit parcial visible).
	ErrStoreUnavailable = errors.New("store unavailable")
)

type Repository interface {
	CreateRequest(ctx context.Context, r WalkRequest) error
	GetRequest(ctx context.Context, id string) (WalkRequest, error)
	ListOpenRequests(ctx context.Context) ([]WalkRequest, error)

	// UpdateRequestStatus es el compare-and-set de estado: solo aplica el cambio
	// si el status actual sigue siendo `from`; si no, devuelve ErrRepoConflict.
	UpdateRequestStatus(ctx context.Context, id string, from, to RequestStatus, updatedAt time.Time) error

	CreateApplication(ctx context.Context, a WalkApplication) error
	GetApplication(ctx context.Context, id string) (WalkApplication, error)
	ListApplicationsByRequest(ctx context.Context, requestID string) ([]WalkApplication, error)

	// AcceptApplication ejecuta el commit atómico de la arbitración:
	// request open->accepted, postulación pending->accepted y hermanas
	// pending->rejected, todo o nada. Si el request ya no está open o la
	// postulación ya no está pending, devuelve ErrRepoConflict sin cambios.
	AcceptApplication(ctx context.Context, requestID, applicationID string, now time.Time) error

	// CountCompletedByWalker cuenta requests completed cuya postulación
	// accepted pertenece a este walker (alimenta el summary).
	CountCompletedByWalker(ctx context.Context, walkerID string) (int, error)
}
