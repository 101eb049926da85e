package dogs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dog-walk-service/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// UsernameLookup resuelve el username del dueño para listados (rompe ciclos).
type UsernameLookup interface {
	UsernameOf(ctx context.Context, userID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, usernames UsernameLookup) {
	r.Route("/dogs", func(dr chi.Router) {
		dr.Post("/", createDogHandler(svc))
		dr.Get("/", listDogsHandler(svc, usernames))
		dr.Get("/{dogID}", getDogHandler(svc))
	})

	// Mis perros (owner)
	r.Get("/me/dogs", listMyDogsHandler(svc))
}

type createDogRequest struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

type dogResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Size        string    `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// dogListItem replica el listado público original: perro + username del dueño.
type dogListItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Size          string `json:"size"`
	OwnerUsername string `json:"owner_username"`
}

func createDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createDogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name: req.Name,
			Size: req.Size,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, "size must be small, medium or large", http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "owner not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "only owners can register dogs", http.StatusForbidden)
			default:
				if errors.Is(err, ErrStoreUnavailable) {
					http.Error(w, "store unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toDogResponse(d))
	}
}

func getDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dogID := chi.URLParam(r, "dogID")

		d, err := svc.GetByID(r.Context(), dogID)
		if err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "dog not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toDogResponse(d))
	}
}

func listDogsHandler(svc *Service, usernames UsernameLookup) http.HandlerFunc {
	// Listado público: todos los perros con el username de su dueño.
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAll(r.Context())
		if err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dogListItem, 0, len(items))
		for _, d := range items {
			owner, err := usernames.UsernameOf(r.Context(), d.OwnerUserID)
			if err != nil {
				// tolera dueños huérfanos en dev in-memory
				owner = ""
			}
			out = append(out, dogListItem{
				ID:            d.ID,
				Name:          d.Name,
				Size:          string(d.Size),
				OwnerUsername: owner,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func listMyDogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				http.Error(w, "store unavailable", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dogResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDogResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toDogResponse(d Dog) dogResponse {
	return dogResponse{
		ID:          d.ID,
		OwnerUserID: d.OwnerUserID,
		Name:        d.Name,
		Size:        string(d.Size),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
