package auth

// Roles understood by the API.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

// Actor identifies the authenticated user performing an operation. Core
// operations take an Actor explicitly instead of reading it from ambient
// state.
type Actor struct {
	ID   uint
	Role string
}

// IsStaff reports whether the actor bypasses campaign-assignment checks.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// ValidRole reports whether role is one of the known role names.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}
