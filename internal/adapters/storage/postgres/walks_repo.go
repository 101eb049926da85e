package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"dog-walk-service/internal/domain/walks"
)

type WalksRepo struct {
	db *sql.DB
}

func NewWalksRepo(db *sql.DB) *WalksRepo {
	return &WalksRepo{db: db}
}

func (r *WalksRepo) CreateRequest(ctx context.Context, req walks.WalkRequest) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO walk_requests (
			id, dog_id, requested_time, duration_minutes, location,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		req.ID,
		req.DogID,
		req.RequestedTime,
		req.DurationMinutes,
		req.Location,
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	)
	return mapWalksErr(err)
}

func (r *WalksRepo) GetRequest(ctx context.Context, id string) (walks.WalkRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return walks.WalkRequest{}, walks.ErrRepoNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, dog_id, requested_time, duration_minutes, location,
		       status, created_at, updated_at
		FROM walk_requests
		WHERE id = $1
	`, id)

	var req walks.WalkRequest
	var statusStr string
	if err := row.Scan(
		&req.ID,
		&req.DogID,
		&req.RequestedTime,
		&req.DurationMinutes,
		&req.Location,
		&statusStr,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return walks.WalkRequest{}, walks.ErrRepoNotFound
		}
		return walks.WalkRequest{}, mapWalksErr(err)
	}
	req.Status = walks.RequestStatus(statusStr)
	return req, nil
}

func (r *WalksRepo) ListOpenRequests(ctx context.Context) ([]walks.WalkRequest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dog_id, requested_time, duration_minutes, location,
		       status, created_at, updated_at
		FROM walk_requests
		WHERE status = $1
		ORDER BY requested_time ASC
	`, string(walks.RequestOpen))
	if err != nil {
		return nil, mapWalksErr(err)
	}
	defer rows.Close()

	out := make([]walks.WalkRequest, 0)
	for rows.Next() {
		var req walks.WalkRequest
		var statusStr string
		if err := rows.Scan(
			&req.ID,
			&req.DogID,
			&req.RequestedTime,
			&req.DurationMinutes,
			&req.Location,
			&statusStr,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, mapWalksErr(err)
		}
		req.Status = walks.RequestStatus(statusStr)
		out = append(out, req)
	}

	return out, rows.Err()
}

// UpdateRequestStatus: compare-and-set vía el WHERE; cero filas afectadas
// significa que el status ya no era `from` (o que el request no existe).
func (r *WalksRepo) UpdateRequestStatus(ctx context.Context, id string, from, to walks.RequestStatus, updatedAt time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE walk_requests
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), updatedAt)
	if err != nil {
		return mapWalksErr(err)
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		// Distinguir "no existe" de "perdiste la carrera".
		if _, err := r.GetRequest(ctx, id); err != nil {
			return err
		}
		return walks.ErrRepoConflict
	}
	return nil
}

func (r *WalksRepo) CreateApplication(ctx context.Context, a walks.WalkApplication) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO walk_applications (
			id, request_id, walker_id, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		a.ID,
		a.RequestID,
		a.WalkerID,
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapWalksErr(err)
}

func (r *WalksRepo) GetApplication(ctx context.Context, id string) (walks.WalkApplication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return walks.WalkApplication{}, walks.ErrRepoNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, request_id, walker_id, status, created_at, updated_at
		FROM walk_applications
		WHERE id = $1
	`, id)

	var a walks.WalkApplication
	var statusStr string
	if err := row.Scan(&a.ID, &a.RequestID, &a.WalkerID, &statusStr, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return walks.WalkApplication{}, walks.ErrRepoNotFound
		}
		return walks.WalkApplication{}, mapWalksErr(err)
	}
	a.Status = walks.ApplicationStatus(statusStr)
	return a, nil
}

func (r *WalksRepo) ListApplicationsByRequest(ctx context.Context, requestID string) ([]walks.WalkApplication, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, walker_id, status, created_at, updated_at
		FROM walk_applications
		WHERE request_id = $1
		ORDER BY created_at ASC
	`, requestID)
	if err != nil {
		return nil, mapWalksErr(err)
	}
	defer rows.Close()

	out := make([]walks.WalkApplication, 0)
	for rows.Next() {
		var a walks.WalkApplication
		var statusStr string
		if err := rows.Scan(&a.ID, &a.RequestID, &a.WalkerID, &statusStr, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, mapWalksErr(err)
		}
		a.Status = walks.ApplicationStatus(statusStr)
		out = append(out, a)
	}

	return out, rows.Err()
}

// AcceptApplication corre la arbitración en una transacción: lockea la fila
// del request (FOR UPDATE) para serializar accepts concurrentes y re-verifica
// open/pending antes de tocar nada.
func (r *WalksRepo) AcceptApplication(ctx context.Context, requestID, applicationID string, now time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapWalksErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var reqStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM walk_requests
		WHERE id = $1
		FOR UPDATE
	`, requestID).Scan(&reqStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return walks.ErrRepoNotFound
		}
		return mapWalksErr(err)
	}
	if walks.RequestStatus(reqStatus) != walks.RequestOpen {
		return walks.ErrRepoConflict
	}

	var appStatus, appRequestID string
	err = tx.QueryRowContext(ctx, `
		SELECT status, request_id FROM walk_applications
		WHERE id = $1
		FOR UPDATE
	`, applicationID).Scan(&appStatus, &appRequestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return walks.ErrRepoNotFound
		}
		return mapWalksErr(err)
	}
	if appRequestID != requestID {
		return walks.ErrRepoNotFound
	}
	if walks.ApplicationStatus(appStatus) != walks.ApplicationPending {
		return walks.ErrRepoConflict
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE walk_applications
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, applicationID, string(walks.ApplicationAccepted), now); err != nil {
		return mapWalksErr(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE walk_applications
		SET status = $3, updated_at = $4
		WHERE request_id = $1 AND id <> $2 AND status = $5
	`, requestID, applicationID, string(walks.ApplicationRejected), now, string(walks.ApplicationPending)); err != nil {
		return mapWalksErr(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE walk_requests
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, requestID, string(walks.RequestAccepted), now); err != nil {
		return mapWalksErr(err)
	}

	if err := tx.Commit(); err != nil {
		return mapWalksErr(err)
	}
	return nil
}

func (r *WalksRepo) CountCompletedByWalker(ctx context.Context, walkerID string) (int, error) {
	walkerID = strings.TrimSpace(walkerID)
	if walkerID == "" {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM walk_requests wr
		JOIN walk_applications wa ON wr.id = wa.request_id
		WHERE wr.status = $1
		  AND wa.status = $2
		  AND wa.walker_id = $3
	`, string(walks.RequestCompleted), string(walks.ApplicationAccepted), walkerID).Scan(&n)
	if err != nil {
		return 0, mapWalksErr(err)
	}
	return n, nil
}

func mapWalksErr(err error) error {
	if err == nil {
		return nil
	}
	if unavailable(err) {
		return walks.ErrStoreUnavailable
	}
	return err
}
