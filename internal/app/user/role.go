package user

// Role is the closed set of user roles. The zero value is not valid; use
// ParseRole or the constants.
type Role string

const (
	// RoleUser is an ordinary participant.
	RoleUser Role = "user"

	// RoleModerator may delete any message.
	RoleModerator Role = "moderator"

	// RoleAdmin may delete any message.
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string onto the closed Role set.
// Unknown values degrade to RoleUser rather than failing, so a bad row can
// never grant elevated permissions.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator:
		return RoleModerator
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// CanModerate reports whether the role grants moderation powers, evaluated
// once per authorization decision.
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
