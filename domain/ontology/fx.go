package ontology

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/ontoforge/ontology-core/internal/config"
	"github.com/ontoforge/ontology-core/pkg/cache"
)

// FxModule wires the ontology store. Named FxModule because Module is taken
// by the object kind of the same name.
var FxModule = fx.Module("ontology",
	fx.Provide(
		NewOrganizationRepository,
		NewMemberRepository,
		NewDepartmentRepository,
		NewProjectRepository,
		NewModuleRepository,
		NewEntityRepository,
		NewTaskRepository,
		fx.Annotate(NewSQLLinkRepository, fx.As(new(LinkRepository))),
		newRegistry,
		newStore,
		newBatcher,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

// newRegistry binds every kind's repository. The organization row is the
// tenant itself, so it gets the root guard (unscoped creation, reads and
// mutations pinned to the context organization); every other kind goes
// through the tenant isolation layer.
func newRegistry(
	orgs *OrganizationRepository,
	members *MemberRepository,
	departments *DepartmentRepository,
	projects *ProjectRepository,
	modules *ModuleRepository,
	entities *EntityRepository,
	tasks *TaskRepository,
) *Registry {
	r := NewRegistry()
	r.Register(GuardOrganizations(orgs))
	r.Register(Isolate(members))
	r.Register(Isolate(departments))
	r.Register(Isolate(projects))
	r.Register(Isolate(modules))
	r.Register(Isolate(entities))
	r.Register(Isolate(tasks))
	return r
}

func newStore(lc fx.Lifecycle, cfg *config.Config, registry *Registry, links LinkRepository, log *slog.Logger) Store {
	svc := NewService(registry, links, log)
	if !cfg.Cache.Enabled {
		return svc
	}
	c := cache.New(cache.Options{
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: cfg.Cache.SweepInterval,
		DefaultTTL:    cfg.Cache.QueryTTL,
	}, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			c.Close()
			return nil
		},
	})
	return NewCachedService(svc, c, CacheTTLs{
		Object: cfg.Cache.ObjectTTL,
		Query:  cfg.Cache.QueryTTL,
		Link:   cfg.Cache.LinkTTL,
	}, log)
}

func newBatcher(lc fx.Lifecycle, cfg *config.Config, registry *Registry, log *slog.Logger) *Batcher {
	b := NewBatcher(registry, cfg.Batch.Window, cfg.Batch.MaxSize, log)
	if !cfg.Batch.Enabled {
		// A closed batcher executes every request directly.
		b.Close()
		return b
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			b.Close()
			return nil
		},
	})
	return b
}
