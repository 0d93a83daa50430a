package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// Repository persists audit log entries.
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("audit.repo")),
	}
}

func (r *Repository) Insert(ctx context.Context, rec *LogEntry) error {
	_, err := r.db.NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		r.log.Error("audit insert failed", logger.Error(err))
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

// Query returns entries matching the filter, newest first.
func (r *Repository) Query(ctx context.Context, f QueryFilter) ([]*LogEntry, error) {
	var recs []*LogEntry
	q := r.db.NewSelect().Model(&recs)

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.ResourceID != nil {
		q = q.Where("resource_id = ?", *f.ResourceID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q = q.Order("created_at DESC").Limit(limit)
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		r.log.Error("audit query failed", logger.Error(err))
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return recs, nil
}

// DeleteOlderThan removes entries created before cutoff and reports how many
// were removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*LogEntry)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		r.log.Error("audit purge failed", logger.Error(err))
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
