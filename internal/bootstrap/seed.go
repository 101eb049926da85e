package bootstrap

import (
	"context"
	"time"

	"dog-walk-service/internal/domain/dogs"
	"dog-walk-service/internal/domain/users"
	"dog-walk-service/internal/domain/walks"
	"dog-walk-service/internal/platform/logger"
)

// Seed carga el fixture de dev (dueños, walkers, perros y requests) solo si
// la base está vacía. Vive fuera del ciclo de vida: es bootstrap opcional,
// no parte de la máquina de estados.
func Seed(
	ctx context.Context,
	userRepo users.Repository,
	usersSvc *users.Service,
	dogsSvc *dogs.Service,
	walksSvc *walks.Service,
	log logger.Logger,
) error {
	n, err := userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	type seedUser struct {
		username string
		email    string
		role     string
	}
	seedUsers := []seedUser{
		{"alice123", "alice@example.com", "owner"},
		{"bobwalker", "bob@example.com", "walker"},
		{"carol123", "carol@example.com", "owner"},
		{"daviddog", "david@example.com", "walker"},
		{"emilyowner", "emily@example.com", "owner"},
	}

	created := map[string]users.User{}
	for _, su := range seedUsers {
		u, err := usersSvc.Create(ctx, users.CreateInput{
			Username: su.username,
			Email:    su.email,
			Role:     su.role,
		})
		if err != nil {
			return err
		}
		created[su.username] = u
	}

	type seedDog struct {
		owner string
		name  string
		size  string
	}
	seedDogs := []seedDog{
		{"alice123", "Max", "medium"},
		{"carol123", "Bella", "small"},
		{"emilyowner", "Rocky", "large"},
		{"alice123", "Buddy", "medium"},
		{"carol123", "Daisy", "small"},
	}

	dogIDs := map[string]string{}
	for _, sd := range seedDogs {
		d, err := dogsSvc.Create(ctx, created[sd.owner].ID, dogs.CreateInput{
			Name: sd.name,
			Size: sd.size,
		})
		if err != nil {
			return err
		}
		dogIDs[sd.name] = d.ID
	}

	type seedRequest struct {
		dog      string
		owner    string
		when     string
		duration int
		location string
		status   walks.RequestStatus
	}
	seedRequests := []seedRequest{
		{"Max", "alice123", "2025-06-10T08:00:00Z", 30, "Parklands", walks.RequestOpen},
		{"Bella", "carol123", "2025-06-10T09:30:00Z", 45, "Beachside Ave", walks.RequestAccepted},
		{"Rocky", "emilyowner", "2025-06-11T10:00:00Z", 60, "City Park", walks.RequestOpen},
		{"Buddy", "alice123", "2025-06-12T14:00:00Z", 20, "Greenwood Trail", walks.RequestOpen},
		{"Daisy", "carol123", "2025-06-13T15:00:00Z", 40, "Riverbend Walk", walks.RequestCancelled},
	}

	for _, sr := range seedRequests {
		when, err := time.Parse(time.RFC3339, sr.when)
		if err != nil {
			return err
		}

		ownerID := created[sr.owner].ID
		req, err := walksSvc.CreateRequest(ctx, ownerID, walks.CreateRequestInput{
			DogID:           dogIDs[sr.dog],
			RequestedTime:   when,
			DurationMinutes: sr.duration,
			Location:        sr.location,
		})
		if err != nil {
			return err
		}

		// Los estados no-open se alcanzan por el ciclo de vida real,
		// no escribiendo el status a mano.
		switch sr.status {
		case walks.RequestAccepted:
			app, err := walksSvc.Apply(ctx, req.ID, created["bobwalker"].ID)
			if err != nil {
				return err
			}
			if _, _, err := walksSvc.AcceptApplication(ctx, req.ID, app.ID, ownerID); err != nil {
				return err
			}
		case walks.RequestCancelled:
			if _, err := walksSvc.Cancel(ctx, req.ID, ownerID); err != nil {
				return err
			}
		}
	}

	log.Info("seed fixtures loaded", map[string]any{
		"users": len(seedUsers),
		"dogs":  len(seedDogs),
		"walks": len(seedRequests),
	})
	return nil
}
