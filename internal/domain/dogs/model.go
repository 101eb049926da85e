package dogs

import "time"

// Size define los tamaños soportados.
// @Enum small, medium, large
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func ValidSize(s Size) bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

// Dog representa un perro registrado por su dueño.
// Nunca se reasigna a otro dueño.
type Dog struct {
	ID          string
	OwnerUserID string

	Name string
	Size Size

	CreatedAt time.Time
	UpdatedAt time.Time
}
