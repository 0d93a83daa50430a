package ontology

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// SQLLinkRepository stores link-table edges in ontology_links.
type SQLLinkRepository struct {
	db  bun.IDB
	log *slog.Logger
}

func NewSQLLinkRepository(db bun.IDB, log *slog.Logger) *SQLLinkRepository {
	return &SQLLinkRepository{
		db:  db,
		log: log.With(logger.Scope("ontology.links")),
	}
}

// Upsert inserts the edge or, when the (source, target, type) triple already
// exists, replaces its metadata and refreshes updated_at. The stored row is
// returned either way.
func (r *SQLLinkRepository) Upsert(ctx context.Context, sourceID, targetID uuid.UUID, kind LinkKind, metadata map[string]any) (*Link, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	ts := now()
	link := &Link{
		ID:        uuid.New(),
		SourceID:  sourceID,
		TargetID:  targetID,
		LinkType:  kind,
		Metadata:  metadata,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	_, err := r.db.NewInsert().
		Model(link).
		On("CONFLICT (source_id, target_id, link_type) DO UPDATE").
		Set("metadata = EXCLUDED.metadata").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		r.log.Error("link upsert failed", logger.Error(err),
			slog.String("source_id", sourceID.String()),
			slog.String("target_id", targetID.String()),
			slog.String("link_type", string(kind)))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return link, nil
}

func (r *SQLLinkRepository) Get(ctx context.Context, id uuid.UUID) (*Link, error) {
	link := new(Link)
	err := r.db.NewSelect().
		Model(link).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return link, nil
}

func (r *SQLLinkRepository) BySource(ctx context.Context, sourceID uuid.UUID, kind LinkKind) ([]*Link, error) {
	var links []*Link
	err := r.db.NewSelect().
		Model(&links).
		Where("source_id = ?", sourceID).
		Where("link_type = ?", kind).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		r.log.Error("link query failed", logger.Error(err), slog.String("source_id", sourceID.String()))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return links, nil
}

func (r *SQLLinkRepository) ByTarget(ctx context.Context, targetID uuid.UUID, kind LinkKind) ([]*Link, error) {
	var links []*Link
	err := r.db.NewSelect().
		Model(&links).
		Where("target_id = ?", targetID).
		Where("link_type = ?", kind).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		r.log.Error("link query failed", logger.Error(err), slog.String("target_id", targetID.String()))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return links, nil
}

func (r *SQLLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Link)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		r.log.Error("link delete failed", logger.Error(err), slog.String("id", id.String()))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// DeleteTouching removes every edge whose source or target is id. Called when
// the object itself is deleted so no dangling edges survive it.
func (r *SQLLinkRepository) DeleteTouching(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Link)(nil)).
		Where("source_id = ? OR target_id = ?", id, id).
		Exec(ctx)
	if err != nil {
		r.log.Error("link cleanup failed", logger.Error(err), slog.String("id", id.String()))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}
