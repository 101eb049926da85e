package users

import "context"

// RoleOf expone el rol de un usuario.
// Se usa para evitar ciclos de imports entre módulos (users <-> dogs/walks).
func (s *Service) RoleOf(ctx context.Context, userID string) (Role, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// UsernameOf expone el username (para listados y summaries).
func (s *Service) UsernameOf(ctx context.Context, userID string) (string, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
