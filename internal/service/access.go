package service

import (
	"critique/internal/policy"
)

// requireAuthenticated is the first check of every write: anonymous callers
// get 401 before anything is looked up.
func requireAuthenticated(actor policy.Principal) error {
	if !actor.Authenticated() {
		return policy.DenyUnauthenticated.Err()
	}
	return nil
}

// requireRole checks a class-level rule, one that does not depend on which
// object is targeted.
func requireRole(actor policy.Principal, resource policy.Resource, action policy.Action) error {
	return policy.Check(policy.Request{Principal: actor, Resource: resource, Action: action})
}

// requireOwnerOrStaff is the object-level content rule, evaluated once the
// object is known to exist.
func requireOwnerOrStaff(actor policy.Principal, authorID uint) error {
	return policy.Check(policy.Request{
		Principal: actor,
		Resource:  policy.Content,
		Action:    policy.Modify,
		IsOwner:   actor.UserID == authorID,
	})
}
