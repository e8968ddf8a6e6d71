package model

// Actor is the authenticated identity making a request. It is rebuilt from
// the signed token on every request and never re-read from storage, so a
// role change only takes effect at the next login.
type Actor struct {
	ID    int
	Email string
	Name  string
	Role  Role
}

func (a *Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a *Actor) IsTeacher() bool { return a.Role == RoleTeacher }
func (a *Actor) IsStudent() bool { return a.Role == RoleStudent }

// HasRole reports whether the actor holds one of roles.
func (a *Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
