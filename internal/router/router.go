package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "dog-walk-service/internal/adapters/storage/memory"
	pg "dog-walk-service/internal/adapters/storage/postgres"
	"dog-walk-service/internal/bootstrap"
	"dog-walk-service/internal/domain/dogs"
	"dog-walk-service/internal/domain/ratings"
	"dog-walk-service/internal/domain/users"
	"dog-walk-service/internal/domain/walks"
	"dog-walk-service/internal/middleware"
	"dog-walk-service/internal/platform/logger"
	"dog-walk-service/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: logger de la app; nil = sin logging de requests.
	Logger logger.Logger

	// Carga fixtures de dev si la base está vacía (SEED_DATA=1 en main).
	SeedData bool
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		userRepo   users.Repository
		dogRepo    dogs.Repository
		walkRepo   walks.Repository
		ratingRepo ratings.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		userRepo = pg.NewUsersRepo(db)
		dogRepo = pg.NewDogsRepo(db)
		walkRepo = pg.NewWalksRepo(db)
		ratingRepo = pg.NewRatingsRepo(db)
	} else {
		userRepo = mem.NewUserRepo()
		dogRepo = mem.NewDogRepo()
		walkRepo = mem.NewWalkRepo()
		ratingRepo = mem.NewRatingRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	dogsSvc := dogs.NewService(dogRepo, usersSvc)
	walksSvc := walks.NewService(walkRepo, dogsSvc, usersSvc)
	ratingsSvc := ratings.NewService(ratingRepo, walksSvc, usersSvc)

	if opts.SeedData {
		log := opts.Logger
		if log == nil {
			log = logger.NewFromEnv()
		}
		if err := bootstrap.Seed(context.Background(), userRepo, usersSvc, dogsSvc, walksSvc, log); err != nil {
			log.Error("seed failed", map[string]any{"error": err.Error()})
		}
	}

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	dogs.RegisterRoutes(r, dogsSvc, usersSvc)
	walks.RegisterRoutes(r, walksSvc, dogsSvc)
	ratings.RegisterRoutes(r, ratingsSvc)

	return r
}
