package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

// Identity is the caller on whose behalf a mutation runs. It is passed
// explicitly into every orchestrated call and recorded on audit events.
type Identity struct {
	Username string
	Role     Role
}

// Validate rejects anonymous identities and unknown roles.
func (i Identity) Validate() error {
	if strings.TrimSpace(i.Username) == "" {
		return fmt.Errorf("identity: empty username: %w", ErrUnauthorized)
	}
	if !i.Role.Valid() {
		return fmt.Errorf("identity: unknown role %q: %w", i.Role, ErrUnauthorized)
	}
	return nil
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
