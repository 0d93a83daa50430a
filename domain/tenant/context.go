// Package tenant carries the per-request tenant identity through the call
// graph. The value is installed once at the request boundary and is immutable
// and read-only below that point; every data operation in the core reads it
// to scope reads and writes to a single organization.
package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// Role is a member's role within an organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return rank(r) >= rank(min)
}

func rank(r Role) int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Context identifies the acting user and the organization every operation in
// the current request is scoped to. It is never persisted.
type Context struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	UserEmail      string
	Role           Role
}

type contextKey struct{}

// WithContext returns a copy of parent carrying the tenant context.
func WithContext(parent context.Context, tc Context) context.Context {
	return context.WithValue(parent, contextKey{}, tc)
}

// FromContext returns the installed tenant context, or ok=false if none is
// installed.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}

// Require returns the installed tenant context or ErrContextNotSet. A missing
// context is a programming error: core data paths must never run outside an
// installed tenant scope.
func Require(ctx context.Context) (Context, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return Context{}, apperror.ErrContextNotSet
	}
	if tc.OrganizationID == uuid.Nil {
		return Context{}, apperror.ErrContextNotSet.WithMessage("tenant context has no organization id")
	}
	return tc, nil
}
