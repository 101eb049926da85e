package walks

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

// DogNameLookup resuelve el nombre del perro para el listado de abiertos.
type DogNameLookup interface {
	NameOf(ctx context.Context, dogID string) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, dogNames DogNameLookup) {
	r.Route("/walks", func(wr chi.Router) {
		wr.Post("/", createRequestHandler(svc))
		wr.Get("/open", listOpenHandler(svc, dogNames))

		wr.Route("/{requestID}", func(rr chi.Router) {
			rr.Get("/", getRequestHandler(svc))
			rr.Post("/cancel", cancelHandler(svc))
			rr.Post("/complete", completeHandler(svc))

			rr.Route("/applications", func(ar chi.Router) {
				ar.Post("/", applyHandler(svc))
				ar.Get("/", listApplicationsHandler(svc))
				ar.Post("/{applicationID}/accept", acceptHandler(svc))
			})
		})
	})
}

type createRequestRequest struct {
	DogID           string `json:"dog_id"`
	RequestedTime   string `json:"requested_time"` // RFC3339
	DurationMinutes int    `json:"duration_minutes"`
	Location        string `json:"location"`
}

type requestResponse struct {
	ID              string    `json:"id"`
	DogID           string    `json:"dog_id"`
	RequestedTime   time.Time `json:"requested_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        string    `json:"location"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type openRequestItem struct {
	ID              string    `json:"id"`
	DogID           string    `json:"dog_id"`
	DogName         string    `json:"dog_name"`
	RequestedTime   time.Time `json:"requested_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Location        string    `json:"location"`
}

type applicationResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	WalkerID  string    `json:"walker_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type acceptResponse struct {
	Request     requestResponse     `json:"request"`
	Application applicationResponse `json:"application"`
}

func createRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var at time.Time
		if strings.TrimSpace(req.RequestedTime) != "" {
			t, err := time.Parse(time.RFC3339, req.RequestedTime)
			if err != nil {
				http.Error(w, "requested_time must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		created, err := svc.CreateRequest(r.Context(), claims.UserID, CreateRequestInput{
			DogID:           req.DogID,
			RequestedTime:   at,
			DurationMinutes: req.DurationMinutes,
			Location:        req.Location,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRequestResponse(created))
	}
}

func getRequestHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "requestID")

		req, err := svc.GetRequest(r.Context(), requestID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

func listOpenHandler(svc *Service, dogNames DogNameLookup) http.HandlerFunc {
	// Listado público de requests abiertos (con nombre del perro).
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListOpen(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]openRequestItem, 0, len(items))
		for _, wr := range items {
			name, err := dogNames.NameOf(r.Context(), wr.DogID)
			if err != nil {
				name = ""
			}
			out = append(out, openRequestItem{
				ID:              wr.ID,
				DogID:           wr.DogID,
				DogName:         name,
				RequestedTime:   wr.RequestedTime,
				DurationMinutes: wr.DurationMinutes,
				Location:        wr.Location,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func applyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		requestID := chi.URLParam(r, "requestID")

		a, err := svc.Apply(r.Context(), requestID, claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toApplicationResponse(a))
	}
}

func listApplicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		requestID := chi.URLParam(r, "requestID")

		items, err := svc.ListApplications(r.Context(), requestID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]applicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		requestID := chi.URLParam(r, "requestID")
		applicationID := chi.URLParam(r, "applicationID")

		req, app, err := svc.AcceptApplication(r.Context(), requestID, applicationID, claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, acceptResponse{
			Request:     toRequestResponse(req),
			Application: toApplicationResponse(app),
		})
	}
}

func cancelHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		requestID := chi.URLParam(r, "requestID")

		req, err := svc.Cancel(r.Context(), requestID, claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

func completeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		requestID := chi.URLParam(r, "requestID")

		req, err := svc.Complete(r.Context(), requestID, claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(req))
	}
}

// writeServiceError mapea los sentinels del service a status codes.
// 409 queda reservado para carreras perdidas; estado ilegal va en 422
// para que el caller pueda distinguirlos.
func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	case ErrBadState:
		http.Error(w, "invalid state", http.StatusUnprocessableEntity)
	case ErrConflict:
		http.Error(w, "conflict", http.StatusConflict)
	default:
		if errors.Is(err, ErrStoreUnavailable) {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRequestResponse(r WalkRequest) requestResponse {
	return requestResponse{
		ID:              r.ID,
		DogID:           r.DogID,
		RequestedTime:   r.RequestedTime,
		DurationMinutes: r.DurationMinutes,
		Location:        r.Location,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toApplicationResponse(a WalkApplication) applicationResponse {
	return applicationResponse{
		ID:        a.ID,
		RequestID: a.RequestID,
		WalkerID:  a.WalkerID,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
