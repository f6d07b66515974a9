// Package policy decides who may do what to which resource.
//
// Decide is a pure function over the caller, the resource class, the action
// and ownership. Handlers evaluate it after authentication and after the
// target object has been located, so a missing object is always reported as
// not found before any permission outcome.
package policy

import (
	"net/http"

	"critique/internal/models"
)

// Resource classifies what a request touches.
type Resource int

const (
	// Catalog covers categories, genres and titles.
	Catalog Resource = iota
	// Content covers reviews and comments.
	Content
	// Users is the admin user-management surface.
	Users
	// Self is the caller's own user record.
	Self
)

// Action is the method class of a request.
type Action int

const (
	Read Action = iota
	Create
	// Modify is an update or delete of an existing object.
	Modify
)

// Decision is the outcome of Decide.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// Principal is the caller. The zero value is an anonymous caller.
type Principal struct {
	UserID      uint
	Role        models.Role
	IsSuperuser bool
}

// PrincipalOf builds a principal from a loaded user; nil means anonymous.
func PrincipalOf(u *models.User) Principal {
	if u == nil {
		return Principal{}
	}
	return Principal{UserID: u.ID, Role: u.Role, IsSuperuser: u.IsSuperuser}
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// account is the role view of the principal; User owns the derived flags.
func (p Principal) account() *models.User {
	return &models.User{Role: p.Role, IsSuperuser: p.IsSuperuser}
}

// IsAdmin is true for superusers and the admin role.
func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.account().IsAdmin()
}

// IsModerator is true for the moderator role.
func (p Principal) IsModerator() bool {
	return p.Authenticated() && p.account().IsModerator()
}

// Request is everything Decide looks at.
type Request struct {
	Principal Principal
	Resource  Resource
	Action    Action
	// IsOwner is only consulted for Content modifications.
	IsOwner bool
}

// ActionFor maps an HTTP method to its action class.
func ActionFor(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	case http.MethodPost:
		return Create
	default:
		return Modify
	}
}

// Decide evaluates the access rule table.
func Decide(r Request) Decision {
	p := r.Principal

	switch r.Resource {
	case Catalog:
		if r.Action == Read {
			return Allow
		}
		return requireAdmin(p)

	case Content:
		if r.Action == Read {
			return Allow
		}
		if !p.Authenticated() {
			return DenyUnauthenticated
		}
		if r.Action == Create || r.IsOwner || p.IsModerator() || p.IsAdmin() {
			return Allow
		}
		return DenyForbidden

	case Users:
		return requireAdmin(p)

	case Self:
		if !p.Authenticated() {
			return DenyUnauthenticated
		}
		return Allow
	}

	return DenyForbidden
}

func requireAdmin(p Principal) Decision {
	if !p.Authenticated() {
		return DenyUnauthenticated
	}
	if !p.IsAdmin() {
		return DenyForbidden
	}
	return Allow
}

// Err converts a decision into the application error a handler should return.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return models.NewUnauthenticatedError("Authentication credentials were not provided")
	default:
		return models.NewForbiddenError("You do not have permission to perform this action")
	}
}

// Check is Decide followed by Err.
func Check(r Request) error {
	return Decide(r).Err()
}
