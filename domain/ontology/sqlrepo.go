package ontology

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ontoforge/ontology-core/internal/database"
	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// table is the shared bun-backed implementation of Get/Query/Count/Delete for
// one entity type. Per-kind repositories embed it and add typed Create and
// Update plus their specific lookups.
type table[T any, PT interface {
	*T
	Object
}] struct {
	db      bun.IDB
	log     *slog.Logger
	kind    Kind
	columns map[string]string
}

func newTable[T any, PT interface {
	*T
	Object
}](db bun.IDB, log *slog.Logger, kind Kind, columns map[string]string) table[T, PT] {
	return table[T, PT]{
		db:      db,
		log:     log.With(logger.Scope("ontology.repo." + string(kind))),
		kind:    kind,
		columns: columns,
	}
}

func (t *table[T, PT]) Kind() Kind { return t.kind }

func (t *table[T, PT]) Get(ctx context.Context, id uuid.UUID) (Object, error) {
	rec := PT(new(T))
	err := t.db.NewSelect().
		Model(rec).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		t.log.Error("get failed", logger.Error(err), slog.String("id", id.String()))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return rec, nil
}

func (t *table[T, PT]) Query(ctx context.Context, opts QueryOptions) ([]Object, error) {
	var recs []T
	q := t.db.NewSelect().Model(&recs)

	q, err := applyQueryOptions(q, opts, t.columns)
	if err != nil {
		return nil, err
	}
	if err := q.Scan(ctx); err != nil {
		t.log.Error("query failed", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make([]Object, len(recs))
	for i := range recs {
		out[i] = PT(&recs[i])
	}
	return out, nil
}

func (t *table[T, PT]) Count(ctx context.Context, opts QueryOptions) (int, error) {
	q := t.db.NewSelect().Model((*T)(nil))

	q, err := applyQueryOptions(q, QueryOptions{Filters: opts.Filters}, t.columns)
	if err != nil {
		return 0, err
	}
	count, err := q.Count(ctx)
	if err != nil {
		t.log.Error("count failed", logger.Error(err))
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return count, nil
}

func (t *table[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := t.db.NewDelete().
		Model((*T)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		t.log.Error("delete failed", logger.Error(err), slog.String("id", id.String()))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// insert writes one row, translating constraint violations to the error
// taxonomy.
func (t *table[T, PT]) insert(ctx context.Context, rec PT) (Object, error) {
	_, err := t.db.NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		return nil, t.insertError(err)
	}
	return rec, nil
}

// insertAll writes all rows in a single multi-row statement inside one
// transaction; the batch succeeds or fails as a whole.
func (t *table[T, PT]) insertAll(ctx context.Context, recs []T) ([]Object, error) {
	if len(recs) == 0 {
		return []Object{}, nil
	}
	_, err := t.db.NewInsert().Model(&recs).Exec(ctx)
	if err != nil {
		return nil, t.insertError(err)
	}
	out := make([]Object, len(recs))
	for i := range recs {
		out[i] = PT(&recs[i])
	}
	return out, nil
}

func (t *table[T, PT]) insertError(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperror.ErrConflict.WithInternal(err)
	case database.IsForeignKeyViolation(err), database.IsNotNullViolation(err):
		// Missing required fields surface from the driver as constraint
		// violations; the store reports them as validation failures.
		return apperror.ErrValidation.WithInternal(err)
	}
	t.log.Error("insert failed", logger.Error(err))
	return apperror.ErrDatabase.WithInternal(err)
}

// update persists the named columns of rec, which must carry its primary key.
func (t *table[T, PT]) update(ctx context.Context, rec PT, columns []string) (Object, error) {
	if len(columns) == 0 {
		return rec, nil
	}
	columns = append(columns, "updated_at")
	_, err := t.db.NewUpdate().
		Model(rec).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		t.log.Error("update failed", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return rec, nil
}

func wrongInput(kind Kind) error {
	return apperror.NewValidation("input payload does not match kind " + string(kind))
}

func wrongPatch(kind Kind) error {
	return apperror.NewValidation("patch payload does not match kind " + string(kind))
}

func now() time.Time { return time.Now().UTC() }
