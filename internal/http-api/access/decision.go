package access

// Actor is the caller of an operation as established by the auth
// middleware. Anonymous requests get the zero Actor (Authenticated false,
// no identity, no role).
type Actor struct {
	ID            string
	Role          Role
	Superuser     bool
	Authenticated bool
}

// Anonymous is the actor used for requests without a valid token.
var Anonymous = Actor{}

// IsAdmin reports whether the actor has admin capability. A superuser is
// admin-equivalent regardless of the stored role.
func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.Role == RoleAdmin || a.Superuser)
}

// IsModerator reports whether the actor has at least moderator capability.
func (a Actor) IsModerator() bool {
	return a.Authenticated && (a.Role.CanModerate() || a.Superuser)
}

// Operation is the kind of access being requested.
type Operation int

const (
	OpRead Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

// Resource is the kind of record the operation targets.
type Resource int

const (
	ResourceCategory Resource = iota
	ResourceGenre
	ResourceTitle
	ResourceReview
	ResourceComment
	ResourceUserProfile
)

// Object carries the per-record facts needed for object-level checks.
// OwnerID is the author of a review/comment, or the subject of a user
// profile. Nil means no object-level check applies (collection-level ops).
type Object struct {
	OwnerID string
}

// Decision is the outcome of an access check.
type Decision int

const (
	// Allow grants the operation.
	Allow Decision = iota
	// DenyAnonymous rejects because the actor is not authenticated.
	DenyAnonymous
	// DenyForbidden rejects an authenticated actor lacking capability.
	DenyForbidden
)

// Allowed reports whether d grants access.
func (d Decision) Allowed() bool { return d == Allow }

// Decide evaluates whether actor may perform op on a resource, optionally
// scoped to a concrete object. It is a pure predicate with no side
// effects. Rules, in precedence order:
//
//  1. reads on catalog resources (category, genre, title, review, comment)
//     are public;
//  2. writes on category/genre/title require admin;
//  3. creating a review or comment requires authentication;
//  4. updating/deleting a review or comment requires ownership or at
//     least moderator capability;
//  5. an authenticated actor always reads/updates their own profile;
//  6. writes on other user records require admin.
func Decide(actor Actor, op Operation, res Resource, obj *Object) Decision {
	if res != ResourceUserProfile && op == OpRead {
		return Allow
	}

	switch res {
	case ResourceCategory, ResourceGenre, ResourceTitle:
		if actor.IsAdmin() {
			return Allow
		}
		return deny(actor)

	case ResourceReview, ResourceComment:
		if !actor.Authenticated {
			return DenyAnonymous
		}
		if op == OpCreate {
			return Allow
		}
		if obj != nil && obj.OwnerID == actor.ID {
			return Allow
		}
		if actor.IsModerator() {
			return Allow
		}
		return DenyForbidden

	case ResourceUserProfile:
		if obj != nil && actor.Authenticated && obj.OwnerID == actor.ID {
			return Allow
		}
		if actor.IsAdmin() {
			return Allow
		}
		return deny(actor)
	}

	return deny(actor)
}

func deny(actor Actor) Decision {
	if !actor.Authenticated {
		return DenyAnonymous
	}
	return DenyForbidden
}
