// Package testutil provides in-memory repository fixtures so store, cache,
// isolation, and action behavior can be tested without a database.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// MemoryRepository is a map-backed ObjectRepository with the same observable
// contract as the SQL implementation: Get returns (nil, nil) when absent,
// Delete is idempotent, CreateBatch is all-or-nothing.
type MemoryRepository struct {
	mu      sync.Mutex
	kind    ontology.Kind
	objects map[uuid.UUID]ontology.Object
}

func NewMemoryRepository(kind ontology.Kind) *MemoryRepository {
	return &MemoryRepository{
		kind:    kind,
		objects: make(map[uuid.UUID]ontology.Object),
	}
}

func (r *MemoryRepository) Kind() ontology.Kind { return r.kind }

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (ontology.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.objects[id], nil
}

func (r *MemoryRepository) Query(_ context.Context, opts ontology.QueryOptions) ([]ontology.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []ontology.Object
	for _, obj := range r.objects {
		ok, err := matches(obj, opts.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, obj)
		}
	}

	if len(opts.OrderBy) > 0 {
		sortObjects(out, opts.OrderBy)
	} else {
		// Deterministic order for tests.
		sort.Slice(out, func(i, j int) bool {
			return out[i].ObjectID().String() < out[j].ObjectID().String()
		})
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []ontology.Object{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	if out == nil {
		out = []ontology.Object{}
	}
	return out, nil
}

func (r *MemoryRepository) Count(ctx context.Context, opts ontology.QueryOptions) (int, error) {
	objs, err := r.Query(ctx, ontology.QueryOptions{Filters: opts.Filters})
	if err != nil {
		return 0, err
	}
	return len(objs), nil
}

func (r *MemoryRepository) Create(_ context.Context, in ontology.Input) (ontology.Object, error) {
	obj, err := buildObject(r.kind, in)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[obj.ObjectID()] = obj
	return obj, nil
}

func (r *MemoryRepository) CreateBatch(_ context.Context, ins []ontology.Input) ([]ontology.Object, error) {
	objs := make([]ontology.Object, 0, len(ins))
	for _, in := range ins {
		obj, err := buildObject(r.kind, in)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, obj := range objs {
		r.objects[obj.ObjectID()] = obj
	}
	return objs, nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, p ontology.Patch) (ontology.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[id]
	if !ok {
		return nil, apperror.NewNotFound(string(r.kind), id.String())
	}
	updated, err := applyPatch(obj, p)
	if err != nil {
		return nil, err
	}
	r.objects[id] = updated
	return updated, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
	return nil
}

// matches evaluates the filters against the object's JSON representation so
// field names line up with the queryable column names.
func matches(obj ontology.Object, filters []ontology.Filter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	fields := jsonMap(obj)
	for _, f := range filters {
		if !f.Operator.Valid() {
			return false, apperror.NewValidation(fmt.Sprintf("unknown operator %q", f.Operator))
		}
		ok, err := evaluate(fields[f.Field], f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(have any, f ontology.Filter) (bool, error) {
	switch f.Operator {
	case ontology.OpEq:
		return compareEqual(have, f.Value), nil
	case ontology.OpNe:
		return !compareEqual(have, f.Value), nil
	case ontology.OpGt, ontology.OpLt, ontology.OpGte, ontology.OpLte:
		c, ok := compareOrder(have, f.Value)
		if !ok {
			return false, nil
		}
		switch f.Operator {
		case ontology.OpGt:
			return c > 0, nil
		case ontology.OpLt:
			return c < 0, nil
		case ontology.OpGte:
			return c >= 0, nil
		default:
			return c <= 0, nil
		}
	case ontology.OpIn:
		for _, candidate := range valueSlice(f.Value) {
			if compareEqual(have, candidate) {
				return true, nil
			}
		}
		return false, nil
	case ontology.OpLike:
		pattern, _ := f.Value.(string)
		s, _ := have.(string)
		return likeMatch(s, pattern), nil
	}
	return false, apperror.NewValidation(fmt.Sprintf("unknown operator %q", f.Operator))
}

func jsonMap(obj ontology.Object) map[string]any {
	raw, _ := json.Marshal(obj)
	fields := map[string]any{}
	_ = json.Unmarshal(raw, &fields)
	return fields
}

func compareEqual(a, b any) bool {
	return fmt.Sprint(normalize(a)) == fmt.Sprint(normalize(b))
}

func compareOrder(a, b any) (int, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func normalize(v any) any {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String()
	case *uuid.UUID:
		if t == nil {
			return nil
		}
		return t.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

func valueSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []uuid.UUID:
		out := make([]any, len(t))
		for i, id := range t {
			out[i] = id
		}
		return out
	default:
		return []any{v}
	}
}

// likeMatch implements SQL LIKE with % wildcards.
func likeMatch(s, pattern string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return s == pattern
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(s, parts[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

func sortObjects(objs []ontology.Object, orderBy []ontology.OrderBy) {
	sort.SliceStable(objs, func(i, j int) bool {
		mi, mj := jsonMap(objs[i]), jsonMap(objs[j])
		for _, ob := range orderBy {
			c, ok := compareOrder(mi[ob.Field], mj[ob.Field])
			if !ok {
				c = strings.Compare(fmt.Sprint(mi[ob.Field]), fmt.Sprint(mj[ob.Field]))
			}
			if c == 0 {
				continue
			}
			if ob.Direction == "desc" {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
