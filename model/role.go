package model

type Role string

const (
	RoleUser    Role = "user"
	RoleBarista Role = "barista"
	RoleAdmin   Role = "admin"
)

// StaffRoles may fulfil orders and manage the menu.
var StaffRoles = []Role{RoleBarista, RoleAdmin}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleBarista, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Can reports whether actual is one of the allowed roles.
func Can(allowed []Role, actual Role) bool {
	for _, role := range allowed {
		if role == actual {
			return true
		}
	}
	return false
}
