package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"dog-walk-service/internal/domain/ratings"

	"github.com/jackc/pgx/v5/pgconn"
)

type RatingsRepo struct {
	db *sql.DB
}

func NewRatingsRepo(db *sql.DB) *RatingsRepo {
	return &RatingsRepo{db: db}
}

func (r *RatingsRepo) Create(ctx context.Context, rt ratings.Rating) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO walk_ratings (
			id, request_id, walker_id, rater_user_id, rating, comment, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		rt.ID,
		rt.RequestID,
		rt.WalkerID,
		rt.RaterUserID,
		rt.Value,
		rt.Comment,
		rt.CreatedAt,
	)
	if err != nil {
		// unique (request_id, rater_user_id): rechazar, no sobrescribir
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ratings.ErrRepoDuplicate
		}
		return mapRatingsErr(err)
	}
	return nil
}

func (r *RatingsRepo) ListByWalker(ctx context.Context, walkerID string) ([]ratings.Rating, error) {
	walkerID = strings.TrimSpace(walkerID)
	if walkerID == "" {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, walker_id, rater_user_id, rating, comment, created_at
		FROM walk_ratings
		WHERE walker_id = $1
		ORDER BY created_at ASC
	`, walkerID)
	if err != nil {
		return nil, mapRatingsErr(err)
	}
	defer rows.Close()

	out := make([]ratings.Rating, 0)
	for rows.Next() {
		var rt ratings.Rating
		if err := rows.Scan(
			&rt.ID,
			&rt.RequestID,
			&rt.WalkerID,
			&rt.RaterUserID,
			&rt.Value,
			&rt.Comment,
			&rt.CreatedAt,
		); err != nil {
			return nil, mapRatingsErr(err)
		}
		out = append(out, rt)
	}

	return out, rows.Err()
}

// StatsByWalker deja el conteo y el promedio en SQL, como el reporte
// original; el redondeo a un decimal lo hace el service.
func (r *RatingsRepo) StatsByWalker(ctx context.Context, walkerID string) (int, float64, error) {
	walkerID = strings.TrimSpace(walkerID)
	if walkerID == "" {
		return 0, 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(rating), AVG(rating)
		FROM walk_ratings
		WHERE walker_id = $1
	`, walkerID).Scan(&count, &avg)
	if err != nil {
		return 0, 0, mapRatingsErr(err)
	}
	if !avg.Valid {
		return count, 0, nil
	}
	return count, avg.Float64, nil
}

func mapRatingsErr(err error) error {
	if err == nil {
		return nil
	}
	if unavailable(err) {
		return ratings.ErrStoreUnavailable
	}
	return err
}
