package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const queryTimeout = 3 * time.Second

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para MVP (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// withTimeout acota cada operación contra el store: si no responde dentro
// del plazo, el caller recibe "no disponible" y la operación se considera
// no realizada.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// unavailable distingue fallas de infraestructura (timeout, conexión caída)
// de errores de datos; el mapeo al sentinel de cada módulo lo hace cada repo.
func unavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, sql.ErrConnDone)
}
