package ontology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

func TestParseKind(t *testing.T) {
	kind, err := ontology.ParseKind("Project")
	require.NoError(t, err)
	assert.Equal(t, ontology.KindProject, kind)

	_, err = ontology.ParseKind("Widget")
	require.ErrorIs(t, err, apperror.ErrUnknownType)
}

func TestParseLinkKind(t *testing.T) {
	kind, err := ontology.ParseLinkKind("Project→Module")
	require.NoError(t, err)
	assert.Equal(t, ontology.LinkProjectModules, kind)

	_, err = ontology.ParseLinkKind("Project→Widget")
	require.ErrorIs(t, err, apperror.ErrUnsupportedLinkType)
}

func TestLinkSpecs(t *testing.T) {
	spec, err := ontology.LinkProjectModules.Spec()
	require.NoError(t, err)
	assert.Equal(t, ontology.StrategyForeignKey, spec.Strategy)
	assert.Equal(t, "project_id", spec.ForeignKeyField)
	assert.Equal(t, ontology.KindProject, spec.Source)
	assert.Equal(t, ontology.KindModule, spec.Target)

	spec, err = ontology.LinkEntityReferences.Spec()
	require.NoError(t, err)
	assert.Equal(t, ontology.StrategyLinkTable, spec.Strategy)
	assert.Empty(t, spec.ForeignKeyField)

	_, err = ontology.LinkKind("Task→Project").Spec()
	require.ErrorIs(t, err, apperror.ErrUnsupportedLinkType)
}
