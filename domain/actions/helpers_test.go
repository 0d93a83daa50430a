package actions_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/actions"
	"github.com/ontoforge/ontology-core/domain/audit"
	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// env is an in-memory store with one organization, scoped the way a request
// would be.
type env struct {
	store ontology.Store
	orgID uuid.UUID
}

func newEnv() *env {
	registry := ontology.NewRegistry()
	for _, kind := range ontology.Kinds {
		repo := testutil.NewMemoryRepository(kind)
		if kind == ontology.KindOrganization {
			registry.Register(repo)
			continue
		}
		registry.Register(ontology.Isolate(repo))
	}
	links := testutil.NewMemoryLinkRepository()
	return &env{
		store: ontology.NewService(registry, links, testLogger()),
		orgID: uuid.New(),
	}
}

// ctx installs a tenant context for the given user acting in the env's
// organization.
func (e *env) ctx(userID uuid.UUID, role tenant.Role) context.Context {
	return tenant.WithContext(context.Background(), tenant.Context{
		OrganizationID: e.orgID,
		UserID:         userID,
		UserEmail:      "user@example.com",
		Role:           role,
	})
}

// run drives an action through its phases directly, without the runner's
// envelope, for tests that assert on the raw output.
func run(t *testing.T, ctx context.Context, a actions.Action) any {
	t.Helper()
	require.NoError(t, a.Validate(ctx))
	out, err := a.Execute(ctx)
	require.NoError(t, err)
	return out
}

// recordingSink captures audit entries for assertions.
type recordingSink struct {
	entries []audit.Entry
}

func (s *recordingSink) Log(_ context.Context, e audit.Entry) (*audit.LogEntry, error) {
	s.entries = append(s.entries, e)
	return &audit.LogEntry{ID: uuid.New()}, nil
}
