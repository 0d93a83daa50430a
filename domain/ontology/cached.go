package ontology

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/cache"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// CacheTTLs configures per-keyspace expiry for the cached store.
type CacheTTLs struct {
	Object time.Duration
	Query  time.Duration
	Link   time.Duration
}

// CachedService wraps a Store with a read cache. Keys carry the tenant's
// organization id so entries of one organization are never served to another.
// Invalidation is pattern-based and conservative: mutations flush every query
// result for the kind rather than tracking exact dependents; DeleteLink,
// which knows only the link id, flushes the whole link namespace. Cache
// failures degrade to direct reads.
type CachedService struct {
	inner Store
	cache *cache.Cache
	ttl   CacheTTLs
	log   *slog.Logger
}

func NewCachedService(inner Store, c *cache.Cache, ttl CacheTTLs, log *slog.Logger) *CachedService {
	return &CachedService{
		inner: inner,
		cache: c,
		ttl:   ttl,
		log:   log.With(logger.Scope("ontology.cached")),
	}
}

func objectKey(org uuid.UUID, kind Kind, id uuid.UUID) string {
	return fmt.Sprintf("obj:%s:%s:%s", org, kind, id)
}

func queryKey(org uuid.UUID, kind Kind, opts QueryOptions) string {
	raw, _ := json.Marshal(opts)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("query:%s:%s:%s", org, kind, hex.EncodeToString(sum[:8]))
}

func linksKey(org, sourceID uuid.UUID, kind LinkKind) string {
	return fmt.Sprintf("links:%s:%s:%s", org, sourceID, kind)
}

// org returns the tenant organization id, or false when no tenant context is
// installed. Without a tenant the wrapper bypasses the cache entirely.
func (s *CachedService) org(ctx context.Context) (uuid.UUID, bool) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return uuid.Nil, false
	}
	return tc.OrganizationID, true
}

func (s *CachedService) GetObject(ctx context.Context, kind Kind, id uuid.UUID) (Object, error) {
	org, ok := s.org(ctx)
	if !ok {
		return s.inner.GetObject(ctx, kind, id)
	}
	key := objectKey(org, kind, id)
	if data, hit := s.cache.Get(ctx, key); hit {
		obj, err := decodeObject(kind, data)
		if err == nil {
			return obj, nil
		}
		s.log.Warn("cached object undecodable", logger.Error(err), slog.String("key", key))
	}
	obj, err := s.inner.GetObject(ctx, kind, id)
	if err != nil || obj == nil {
		return obj, err
	}
	if data, err := json.Marshal(obj); err == nil {
		s.cache.Set(ctx, key, data, s.ttl.Object)
	}
	return obj, nil
}

func (s *CachedService) QueryObjects(ctx context.Context, kind Kind, opts QueryOptions) ([]Object, error) {
	org, ok := s.org(ctx)
	if !ok {
		return s.inner.QueryObjects(ctx, kind, opts)
	}
	key := queryKey(org, kind, opts)
	if data, hit := s.cache.Get(ctx, key); hit {
		objs, err := decodeObjects(kind, data)
		if err == nil {
			return objs, nil
		}
		s.log.Warn("cached query undecodable", logger.Error(err), slog.String("key", key))
	}
	objs, err := s.inner.QueryObjects(ctx, kind, opts)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(objs); err == nil {
		s.cache.Set(ctx, key, data, s.ttl.Query)
	}
	return objs, nil
}

func (s *CachedService) CountObjects(ctx context.Context, kind Kind, opts QueryOptions) (int, error) {
	return s.inner.CountObjects(ctx, kind, opts)
}

func (s *CachedService) CreateObject(ctx context.Context, in Input) (Object, error) {
	obj, err := s.inner.CreateObject(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidateObject(ctx, in.InputKind(), obj.ObjectID(), false)
	return obj, nil
}

func (s *CachedService) CreateObjects(ctx context.Context, kind Kind, ins []Input) ([]Object, error) {
	objs, err := s.inner.CreateObjects(ctx, kind, ins)
	if err != nil {
		return nil, err
	}
	if org, ok := s.org(ctx); ok {
		s.cache.DeletePattern(ctx, fmt.Sprintf("query:%s:%s:*", org, kind))
	}
	return objs, nil
}

func (s *CachedService) UpdateObject(ctx context.Context, kind Kind, id uuid.UUID, p Patch) (Object, error) {
	obj, err := s.inner.UpdateObject(ctx, kind, id, p)
	if err != nil {
		return nil, err
	}
	s.invalidateObject(ctx, kind, id, false)
	return obj, nil
}

func (s *CachedService) DeleteObject(ctx context.Context, kind Kind, id uuid.UUID) error {
	if err := s.inner.DeleteObject(ctx, kind, id); err != nil {
		return err
	}
	s.invalidateObject(ctx, kind, id, true)
	return nil
}

// invalidateObject flushes the object's own entry and every cached query for
// its kind; withLinks additionally flushes link results rooted at the id.
func (s *CachedService) invalidateObject(ctx context.Context, kind Kind, id uuid.UUID, withLinks bool) {
	org, ok := s.org(ctx)
	if !ok {
		return
	}
	s.cache.Delete(ctx, objectKey(org, kind, id))
	s.cache.DeletePattern(ctx, fmt.Sprintf("query:%s:%s:*", org, kind))
	if withLinks {
		s.cache.DeletePattern(ctx, fmt.Sprintf("links:%s:%s:*", org, id))
	}
}

func (s *CachedService) GetLinkedObjects(ctx context.Context, sourceID uuid.UUID, kind LinkKind) ([]Object, error) {
	org, ok := s.org(ctx)
	if !ok {
		return s.inner.GetLinkedObjects(ctx, sourceID, kind)
	}
	spec, err := kind.Spec()
	if err != nil {
		return nil, err
	}
	key := linksKey(org, sourceID, kind)
	if data, hit := s.cache.Get(ctx, key); hit {
		objs, err := decodeObjects(spec.Target, data)
		if err == nil {
			return objs, nil
		}
		s.log.Warn("cached links undecodable", logger.Error(err), slog.String("key", key))
	}
	objs, err := s.inner.GetLinkedObjects(ctx, sourceID, kind)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(objs); err == nil {
		s.cache.Set(ctx, key, data, s.ttl.Link)
	}
	return objs, nil
}

func (s *CachedService) CreateLink(ctx context.Context, sourceID, targetID uuid.UUID, kind LinkKind, metadata map[string]any) (*Link, error) {
	link, err := s.inner.CreateLink(ctx, sourceID, targetID, kind, metadata)
	if err != nil {
		return nil, err
	}
	if org, ok := s.org(ctx); ok {
		s.cache.DeletePattern(ctx, fmt.Sprintf("links:%s:%s:*", org, sourceID))
		s.cache.DeletePattern(ctx, fmt.Sprintf("links:%s:%s:*", org, targetID))
	}
	return link, nil
}

// DeleteLink knows only the link id, not its endpoints, so it flushes the
// whole link namespace.
func (s *CachedService) DeleteLink(ctx context.Context, id uuid.UUID) error {
	if err := s.inner.DeleteLink(ctx, id); err != nil {
		return err
	}
	s.cache.DeletePattern(ctx, "links:*")
	return nil
}

func (s *CachedService) BatchQuery(ctx context.Context, reqs []BatchRequest) ([][]Object, error) {
	return s.inner.BatchQuery(ctx, reqs)
}
