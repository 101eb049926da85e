package walks

import "time"

// WalkRequest es el paseo publicado por el dueño de un perro.
type WalkRequest struct {
	ID    string
	DogID string

	RequestedTime   time.Time
	DurationMinutes int
	Location        string

	Status RequestStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalkApplication es la postulación de un walker a un request concreto.
type WalkApplication struct {
	ID        string
	RequestID string
	WalkerID  string

	Status ApplicationStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
