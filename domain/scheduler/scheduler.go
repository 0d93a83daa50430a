// Package scheduler runs recurring maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"github.com/ontoforge/ontology-core/domain/audit"
	"github.com/ontoforge/ontology-core/internal/config"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// Scheduler wraps a seconds-resolution cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func New(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With(logger.Scope("scheduler")),
	}
}

// Register schedules a named job. Job errors are logged, never fatal.
func (s *Scheduler) Register(spec, name string, job func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := job(context.Background()); err != nil {
			s.log.Error("scheduled job failed",
				slog.String("job", name),
				logger.Error(err))
			return
		}
		s.log.Info("scheduled job completed",
			slog.String("job", name),
			slog.Duration("took", time.Since(start)))
	})
	return err
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(registerJobs),
)

func registerJobs(lc fx.Lifecycle, s *Scheduler, cfg *config.Config, auditSvc *audit.Service) error {
	retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
	err := s.Register(cfg.Audit.PurgeSchedule, "audit-purge", func(ctx context.Context) error {
		return auditSvc.Purge(ctx, retention)
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: s.Stop,
	})
	return nil
}
