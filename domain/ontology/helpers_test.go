package ontology_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires in-memory repositories into a registry: every kind isolated
// except Organization, which stays unwrapped so tests can seed tenants and
// exercise the store without a context. The root guard has its own tests.
type fixture struct {
	registry *ontology.Registry
	repos    map[ontology.Kind]*testutil.MemoryRepository
	links    *testutil.MemoryLinkRepository
	store    *ontology.Service
}

func newFixture() *fixture {
	f := &fixture{
		registry: ontology.NewRegistry(),
		repos:    make(map[ontology.Kind]*testutil.MemoryRepository),
		links:    testutil.NewMemoryLinkRepository(),
	}
	for _, kind := range ontology.Kinds {
		repo := testutil.NewMemoryRepository(kind)
		f.repos[kind] = repo
		if kind == ontology.KindOrganization {
			f.registry.Register(repo)
			continue
		}
		f.registry.Register(ontology.Isolate(repo))
	}
	f.store = ontology.NewService(f.registry, f.links, testLogger())
	return f
}

func tenantCtx(org uuid.UUID) context.Context {
	return tenant.WithContext(context.Background(), tenant.Context{
		OrganizationID: org,
		UserID:         uuid.New(),
		Role:           tenant.RoleOwner,
	})
}
