package postgres

import (
	"context"
	"database/sql"
	"strings"

	"dog-walk-service/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, role, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		u.ID,
		u.Username,
		u.Email,
		string(u.Role),
		u.CreatedAt,
	)
	return mapUsersErr(err)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, users.ErrRepoNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, role, created_at
		FROM users
		WHERE id = $1
	`, id)

	return scanUser(row)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return users.User{}, users.ErrRepoNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, role, created_at
		FROM users
		WHERE username = $1
	`, username)

	return scanUser(row)
}

func (r *UsersRepo) ListByRole(ctx context.Context, role users.Role) ([]users.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, email, role, created_at
		FROM users
		WHERE role = $1
		ORDER BY created_at ASC
	`, string(role))
	if err != nil {
		return nil, mapUsersErr(err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		var roleStr string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &roleStr, &u.CreatedAt); err != nil {
			return nil, mapUsersErr(err)
		}
		u.Role = users.Role(roleStr)
		out = append(out, u)
	}

	return out, mapUsersErr(rows.Err())
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, mapUsersErr(err)
	}
	return n, nil
}

func scanUser(row *sql.Row) (users.User, error) {
	var u users.User
	var roleStr string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &roleStr, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, users.ErrRepoNotFound
		}
		return users.User{}, mapUsersErr(err)
	}
	u.Role = users.Role(roleStr)
	return u, nil
}

func mapUsersErr(err error) error {
	if err == nil {
		return nil
	}
	if unavailable(err) {
		return users.ErrStoreUnavailable
	}
	return err
}
