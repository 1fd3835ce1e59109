package domain

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleTutor      Role = "TUTOR"
	RoleStudent    Role = "STUDENT"
)

// Actor is the verified identity behind a request.
type Actor struct {
	ID   uint64
	Role Role
}

func (a *Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}
