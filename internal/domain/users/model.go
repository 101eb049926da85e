package users

import "time"

// Role define los roles soportados.
// @Enum owner, walker
type Role string

const (
	RoleOwner  Role = "owner"
	RoleWalker Role = "walker"
)

func ValidRole(r Role) bool {
	return r == RoleOwner || r == RoleWalker
}

// User representa una cuenta registrada en el servicio.
// El rol es inmutable después de la creación (no existe flujo de cambio de rol).
type User struct {
	ID string

	Username string
	Email    string
	Role     Role

	CreatedAt time.Time
}
