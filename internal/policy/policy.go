// Package policy holds the pure request predicates gating blog and account
// actions. Safe (read-only) methods always pass; unsafe methods require the
// attribute each predicate names. Handlers compose predicates conjunctively.
package policy

import (
	"net/http"

	"github.com/google/uuid"
)

// Actor is the requesting user as seen by the predicates. The zero value is
// an anonymous requester.
type Actor struct {
	ID          uuid.UUID
	IsVerified  bool
	IsSuperuser bool
}

// SafeMethod reports whether the HTTP method is read-only.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Verified requires a verified actor for every method.
func Verified(actor Actor) bool {
	return actor.IsVerified
}

// ReadOnlyOrVerified allows safe methods unconditionally and unsafe methods
// only for verified actors.
func ReadOnlyOrVerified(actor Actor, method string) bool {
	return SafeMethod(method) || actor.IsVerified
}

// ReadOnlyOrSuperuser allows safe methods unconditionally and unsafe
// methods only for superusers.
func ReadOnlyOrSuperuser(actor Actor, method string) bool {
	return SafeMethod(method) || actor.IsSuperuser
}

// ReadOnlyOrOwner allows safe methods unconditionally and unsafe methods
// only for the owner of the target resource.
func ReadOnlyOrOwner(actor Actor, method string, resourceOwner uuid.UUID) bool {
	return SafeMethod(method) || (actor.ID != uuid.Nil && actor.ID == resourceOwner)
}
