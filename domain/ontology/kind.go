// Package ontology implements the polymorphic object/link store at the heart
// of the data-access layer. Heterogeneous domain records are exposed as typed
// objects connected by typed links, with tenant isolation enforced below the
// store facade.
package ontology

import (
	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// Kind identifies one concrete object type. The set is closed: repositories
// are registered per kind at startup and unknown kinds are rejected there,
// not per call.
type Kind string

const (
	KindOrganization Kind = "Organization"
	KindMember       Kind = "Member"
	KindDepartment   Kind = "Department"
	KindProject      Kind = "Project"
	KindModule       Kind = "Module"
	KindEntity       Kind = "Entity"
	KindTask         Kind = "Task"
)

// Kinds lists every known object kind.
var Kinds = []Kind{
	KindOrganization,
	KindMember,
	KindDepartment,
	KindProject,
	KindModule,
	KindEntity,
	KindTask,
}

// Valid reports whether k names a known object kind.
func (k Kind) Valid() bool {
	switch k {
	case KindOrganization, KindMember, KindDepartment, KindProject, KindModule, KindEntity, KindTask:
		return true
	}
	return false
}

// ParseKind converts a wire-format type name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", apperror.ErrUnknownType.WithMessagef("unknown object type %q", s)
	}
	return k, nil
}

// Object is the common view of every stored record kind.
type Object interface {
	ObjectKind() Kind
	ObjectID() uuid.UUID
}

// Scoped is implemented by objects that carry an organization scoping column.
// The tenant isolation layer relies on it to keep rows invisible outside
// their organization.
type Scoped interface {
	Object
	OrganizationScope() uuid.UUID
}

// Input is a typed creation payload for one kind.
type Input interface {
	InputKind() Kind
}

// ScopedInput is an Input whose organization id is stamped by the isolation
// layer, overriding any caller-supplied value.
type ScopedInput interface {
	Input
	WithOrganization(id uuid.UUID) Input
}

// Patch is a typed partial-update payload for one kind. Nil fields retain
// their prior value.
type Patch interface {
	PatchKind() Kind
}
