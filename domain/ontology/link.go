package ontology

import (
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// LinkKind identifies one typed relation between two object kinds. The wire
// format is "Source→Target[:Qualifier]". Each kind is statically associated
// with its endpoint kinds and its traversal strategy, so no string parsing
// happens past the boundary.
type LinkKind string

const (
	// Foreign-key relations: the target table carries a column referencing
	// the source id, so traversal is a plain filtered query with no
	// link-table lookup.
	LinkProjectModules    LinkKind = "Project→Module"
	LinkProjectEntities   LinkKind = "Project→Entity"
	LinkModuleEntities    LinkKind = "Module→Entity"
	LinkOrgDepartments    LinkKind = "Organization→Department"
	LinkDepartmentMembers LinkKind = "Department→Member"
	LinkProjectTasks      LinkKind = "Project→Task"

	// Link-table relations: graph-style edges stored in ontology_links.
	LinkModuleDependsOn  LinkKind = "Module→Module"
	LinkOrgProjects      LinkKind = "Organization→Project"
	LinkEntityReferences LinkKind = "Entity→Entity"
	LinkTaskBlocks       LinkKind = "Task→Task"
)

// Strategy selects how a link kind is traversed.
type Strategy int

const (
	// StrategyForeignKey resolves targets by querying the target kind's
	// table on the foreign-key column.
	StrategyForeignKey Strategy = iota
	// StrategyLinkTable resolves targets through the ontology_links table.
	StrategyLinkTable
)

// LinkSpec is the static description of one link kind.
type LinkSpec struct {
	Kind     LinkKind
	Source   Kind
	Target   Kind
	Strategy Strategy

	// ForeignKeyField is the queryable field on the target kind holding the
	// source id. Only set for StrategyForeignKey.
	ForeignKeyField string
}

var linkSpecs = map[LinkKind]LinkSpec{
	LinkProjectModules:    {Kind: LinkProjectModules, Source: KindProject, Target: KindModule, Strategy: StrategyForeignKey, ForeignKeyField: "project_id"},
	LinkProjectEntities:   {Kind: LinkProjectEntities, Source: KindProject, Target: KindEntity, Strategy: StrategyForeignKey, ForeignKeyField: "project_id"},
	LinkModuleEntities:    {Kind: LinkModuleEntities, Source: KindModule, Target: KindEntity, Strategy: StrategyForeignKey, ForeignKeyField: "module_id"},
	LinkOrgDepartments:    {Kind: LinkOrgDepartments, Source: KindOrganization, Target: KindDepartment, Strategy: StrategyForeignKey, ForeignKeyField: "organization_id"},
	LinkDepartmentMembers: {Kind: LinkDepartmentMembers, Source: KindDepartment, Target: KindMember, Strategy: StrategyForeignKey, ForeignKeyField: "department_id"},
	LinkProjectTasks:      {Kind: LinkProjectTasks, Source: KindProject, Target: KindTask, Strategy: StrategyForeignKey, ForeignKeyField: "project_id"},

	LinkModuleDependsOn:  {Kind: LinkModuleDependsOn, Source: KindModule, Target: KindModule, Strategy: StrategyLinkTable},
	LinkOrgProjects:      {Kind: LinkOrgProjects, Source: KindOrganization, Target: KindProject, Strategy: StrategyLinkTable},
	LinkEntityReferences: {Kind: LinkEntityReferences, Source: KindEntity, Target: KindEntity, Strategy: StrategyLinkTable},
	LinkTaskBlocks:       {Kind: LinkTaskBlocks, Source: KindTask, Target: KindTask, Strategy: StrategyLinkTable},
}

// Spec returns the static description of k.
func (k LinkKind) Spec() (LinkSpec, error) {
	spec, ok := linkSpecs[k]
	if !ok {
		return LinkSpec{}, apperror.ErrUnsupportedLinkType.WithMessagef("link type %q has no configured traversal strategy", string(k))
	}
	return spec, nil
}

// Valid reports whether k has a configured traversal strategy.
func (k LinkKind) Valid() bool {
	_, ok := linkSpecs[k]
	return ok
}

// ParseLinkKind converts a wire-format link type into a LinkKind.
func ParseLinkKind(s string) (LinkKind, error) {
	k := LinkKind(s)
	if !k.Valid() {
		return "", apperror.ErrUnsupportedLinkType.WithMessagef("link type %q has no configured traversal strategy", s)
	}
	return k, nil
}
