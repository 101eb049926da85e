package ratings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dog-walk-service/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Calificar un paseo (dueño, request completed)
	r.Post("/walks/{requestID}/ratings", submitRatingHandler(svc))

	// Reporte de performance por walker
	r.Route("/walkers", func(wr chi.Router) {
		wr.Get("/summary", summaryAllHandler(svc))
		wr.Get("/{walkerID}/summary", summaryHandler(svc))
	})
}

type submitRatingRequest struct {
	WalkerID string `json:"walker_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type ratingResponse struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	WalkerID    string    `json:"walker_id"`
	RaterUserID string    `json:"rater_user_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type summaryResponse struct {
	WalkerID       string   `json:"walker_id"`
	WalkerUsername string   `json:"walker_username"`
	TotalRatings   int      `json:"total_ratings"`
	AverageRating  *float64 `json:"average_rating"` // null sin ratings
	CompletedWalks int      `json:"completed_walks"`
}

func submitRatingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		requestID := chi.URLParam(r, "requestID")

		var req submitRatingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rt, err := svc.Submit(r.Context(), claims.UserID, SubmitInput{
			RequestID: requestID,
			WalkerID:  req.WalkerID,
			Value:     req.Rating,
			Comment:   req.Comment,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, "rating must be an integer between 1 and 5", http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "walk request not found", http.StatusNotFound)
			case ErrBadState:
				http.Error(w, "walk is not completed", http.StatusUnprocessableEntity)
			case ErrForbidden:
				http.Error(w, "walker did not walk this request", http.StatusForbidden)
			case ErrConflict:
				http.Error(w, "already rated", http.StatusConflict)
			default:
				writeStoreError(w, err)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toRatingResponse(rt))
	}
}

func summaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		walkerID := chi.URLParam(r, "walkerID")

		sum, err := svc.SummaryFor(r.Context(), walkerID)
		if err != nil {
			switch err {
			case ErrInvalidInput, ErrNotFound:
				http.Error(w, "walker not found", http.StatusNotFound)
			default:
				writeStoreError(w, err)
			}
			return
		}

		writeJSON(w, http.StatusOK, toSummaryResponse(sum))
	}
}

func summaryAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.SummaryAll(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}

		out := make([]summaryResponse, 0, len(items))
		for _, sum := range items {
			out = append(out, toSummaryResponse(sum))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toRatingResponse(rt Rating) ratingResponse {
	return ratingResponse{
		ID:          rt.ID,
		RequestID:   rt.RequestID,
		WalkerID:    rt.WalkerID,
		RaterUserID: rt.RaterUserID,
		Rating:      rt.Value,
		Comment:     rt.Comment,
		CreatedAt:   rt.CreatedAt,
	}
}

func toSummaryResponse(s WalkerSummary) summaryResponse {
	return summaryResponse{
		WalkerID:       s.WalkerID,
		WalkerUsername: s.Username,
		TotalRatings:   s.TotalRatings,
		AverageRating:  s.AverageRating,
		CompletedWalks: s.CompletedWalks,
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	// El service ya normaliza las caídas de los stores ajenos a su sentinel.
	if errors.Is(err, ErrStoreUnavailable) {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
