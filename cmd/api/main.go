package main

import (
	"net/http"
	"os"
	"time"

	"dog-walk-service/internal/adapters/auth/identity"
	"dog-walk-service/internal/platform/logger"
	"dog-walk-service/internal/ports/auth"
	"dog-walk-service/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	log := logger.NewFromEnv()

	// Con AUTH_BASE_URL + AUTH_API_KEY se valida contra el servicio de
	// identidad; sin ellos el middleware corre en modo dev (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("AUTH_BASE_URL"); baseURL != "" {
		client, err := identity.NewClient(identity.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("AUTH_API_KEY"),
		})
		if err != nil {
			log.Error("invalid auth config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		verifier = identity.NewVerifier(client)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Logger:       log,
		SeedData:     os.Getenv("SEED_DATA") == "1",
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
