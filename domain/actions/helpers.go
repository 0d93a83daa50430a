package actions

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

const maxNameLength = 255

func validateName(field, value string) error {
	if value == "" {
		return apperror.NewValidation(field + " must not be empty")
	}
	if utf8.RuneCountInString(value) > maxNameLength {
		return apperror.NewValidation(field + " must be at most 255 characters")
	}
	return nil
}

// requireKind loads an object of the given kind, failing with NotFound when
// it is absent or invisible to the tenant.
func requireKind(ctx context.Context, store ontology.Store, kind ontology.Kind, id uuid.UUID) (ontology.Object, error) {
	obj, err := store.GetObject(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(kind), id.String())
	}
	return obj, nil
}
