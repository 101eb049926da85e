package postgres

import (
	"context"
	"database/sql"
	"strings"

	"dog-walk-service/internal/domain/dogs"
)

type DogsRepo struct {
	db *sql.DB
}

func NewDogsRepo(db *sql.DB) *DogsRepo {
	return &DogsRepo{db: db}
}

func (r *DogsRepo) Create(ctx context.Context, d dogs.Dog) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dogs (id, owner_user_id, name, size, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		d.ID,
		d.OwnerUserID,
		d.Name,
		string(d.Size),
		d.CreatedAt,
		d.UpdatedAt,
	)
	return mapDogsErr(err)
}

func (r *DogsRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return dogs.Dog{}, dogs.ErrRepoNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, size, created_at, updated_at
		FROM dogs
		WHERE id = $1
	`, id)

	var d dogs.Dog
	var sizeStr string
	if err := row.Scan(&d.ID, &d.OwnerUserID, &d.Name, &sizeStr, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return dogs.Dog{}, dogs.ErrRepoNotFound
		}
		return dogs.Dog{}, mapDogsErr(err)
	}
	d.Size = dogs.Size(sizeStr)
	return d, nil
}

func (r *DogsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]dogs.Dog, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	return r.list(ctx, `
		SELECT id, owner_user_id, name, size, created_at, updated_at
		FROM dogs
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
}

func (r *DogsRepo) ListAll(ctx context.Context) ([]dogs.Dog, error) {
	return r.list(ctx, `
		SELECT id, owner_user_id, name, size, created_at, updated_at
		FROM dogs
		ORDER BY created_at ASC
	`)
}

func (r *DogsRepo) list(ctx context.Context, query string, args ...any) ([]dogs.Dog, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDogsErr(err)
	}
	defer rows.Close()

	out := make([]dogs.Dog, 0)
	for rows.Next() {
		var d dogs.Dog
		var sizeStr string
		if err := rows.Scan(&d.ID, &d.OwnerUserID, &d.Name, &sizeStr, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, mapDogsErr(err)
		}
		d.Size = dogs.Size(sizeStr)
		out = append(out, d)
	}

	return out, mapDogsErr(rows.Err())
}

func mapDogsErr(err error) error {
	if err == nil {
		return nil
	}
	if unavailable(err) {
		return dogs.ErrStoreUnavailable
	}
	return err
}
