// Package audit records who did what to which resource. Writes are
// best-effort from the caller's point of view: the action pipeline logs and
// swallows sink failures.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/pkg/logger"
)

// Sink is the write side consumed by the action pipeline.
type Sink interface {
	Log(ctx context.Context, entry Entry) (*LogEntry, error)
}

// Service implements the audit sink and its query surface.
type Service struct {
	repo *Repository
	log  *slog.Logger
}

func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(logger.Scope("audit.service")),
	}
}

func (s *Service) Log(ctx context.Context, entry Entry) (*LogEntry, error) {
	rec := &LogEntry{
		ID:           uuid.New(),
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Query(ctx context.Context, f QueryFilter) ([]*LogEntry, error) {
	return s.repo.Query(ctx, f)
}

// Purge removes entries older than the retention window.
func (s *Service) Purge(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().UTC().Add(-retention)
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	s.log.Info("purged expired audit entries",
		slog.Int64("deleted", n),
		slog.Time("cutoff", cutoff))
	return nil
}
