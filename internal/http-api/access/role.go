package access

// Role is the stored role of a user account.
// Only 3 roles: "user", "moderator", "admin" | default after creation is "user"
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// rank orders roles by capability: admin covers moderator covers user.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleModerator:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// Covers reports whether r can perform every action the other role can.
func (r Role) Covers(other Role) bool {
	return r.rank() >= other.rank()
}

// CanModerate reports whether r may edit or remove other users' reviews
// and comments.
func (r Role) CanModerate() bool {
	return r.Covers(RoleModerator)
}
