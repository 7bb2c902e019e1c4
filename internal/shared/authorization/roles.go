// Package authorization defines the platform's account roles.
package authorization

type Role string

const (
	// RoleClient books services. It is the least-privileged role and the
	// default for accounts created through federated login.
	RoleClient Role = "client"
	// RoleProvider offers services on the marketplace.
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// DefaultRole is used when a registration flow does not request a role.
func DefaultRole() Role {
	return RoleClient
}

// ParseRole returns the role named by s, falling back to the default for
// anything unknown.
func ParseRole(s string) Role {
	r := Role(s)
	if r.IsValid() {
		return r
	}
	return DefaultRole()
}
