package session

// Role tags which dashboard and backend calls a session may use.
type Role string

const (
	RoleAnonymous     Role = ""
	RolePatient       Role = "patient"
	RoleLoggedPatient Role = "loggedPatient"
	RoleDoctor        Role = "doctor"
	RoleAdmin         Role = "admin"
)

// ParseRole maps the stored or submitted role string to a Role. Unknown
// strings map to RoleAnonymous with ok=false.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAnonymous, RolePatient, RoleLoggedPatient, RoleDoctor, RoleAdmin:
		return r, true
	default:
		return RoleAnonymous, false
	}
}

// RequiresToken reports whether the role is only valid with a bearer token.
func (r Role) RequiresToken() bool {
	switch r {
	case RoleLoggedPatient, RoleDoctor, RoleAdmin:
		return true
	case RoleAnonymous, RolePatient:
		return false
	}
	return false
}

func (r Role) String() string {
	if r == RoleAnonymous {
		return "anonymous"
	}
	return string(r)
}
