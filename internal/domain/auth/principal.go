package auth

import "github.com/google/uuid"

// Principal is the authenticated caller of a request.
type Principal struct {
	ID    uuid.UUID
	Email string
	Roles []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
