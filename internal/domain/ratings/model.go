package ratings

import "time"

const (
	MinValue = 1
	MaxValue = 5
)

// Rating es la calificación de un dueño a un walker por un paseo completado.
// Nunca se borra ni se sobrescribe: un (request, rater) califica una sola vez.
type Rating struct {
	ID        string
	RequestID string
	WalkerID  string

	RaterUserID string
	Value       int
	Comment     string

	CreatedAt time.Time
}

// WalkerSummary es el agregado de performance por walker.
// AverageRating es nil cuando no hay ratings (nunca 0).
type WalkerSummary struct {
	WalkerID string
	Username string

	TotalRatings   int
	AverageRating  *float64
	CompletedWalks int
}
