package ontology

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/logger"
	"github.com/ontoforge/ontology-core/pkg/metrics"
)

// ErrBatchShape reports a merged insert whose result rows do not line up with
// the folded requests.
var ErrBatchShape = apperror.ErrInternal.WithMessage("merged insert result does not match folded requests")

type batchOpKind int

const (
	batchGet batchOpKind = iota
	batchInsert
)

type batchResult struct {
	obj Object
	err error
}

type batchOp struct {
	ctx   context.Context
	op    batchOpKind
	kind  Kind
	org   uuid.UUID
	id    uuid.UUID
	input Input
	done  chan batchResult
}

// Batcher accumulates point-lookups and inserts for a short window and merges
// same-kind operations into single statements: lookups into one "id IN (...)"
// select, inserts into one multi-row insert. Operations are grouped by kind
// and by tenant organization, so requests of different tenants are never
// folded into the same statement. A merged statement that fails fails every
// request folded into it.
type Batcher struct {
	registry *Registry
	window   time.Duration
	maxSize  int
	log      *slog.Logger

	mu      sync.Mutex
	pending []*batchOp
	timer   *time.Timer
	closed  bool
}

func NewBatcher(registry *Registry, window time.Duration, maxSize int, log *slog.Logger) *Batcher {
	if window <= 0 {
		window = 5 * time.Millisecond
	}
	if maxSize <= 0 {
		maxSize = 50
	}
	return &Batcher{
		registry: registry,
		window:   window,
		maxSize:  maxSize,
		log:      log.With(logger.Scope("ontology.batcher")),
	}
}

// Get enqueues a point-lookup and blocks until its batch flushes.
func (b *Batcher) Get(ctx context.Context, kind Kind, id uuid.UUID) (Object, error) {
	op := &batchOp{
		ctx:  ctx,
		op:   batchGet,
		kind: kind,
		org:  orgOf(ctx),
		id:   id,
		done: make(chan batchResult, 1),
	}
	return b.wait(ctx, op)
}

// Create enqueues an insert and blocks until its batch flushes.
func (b *Batcher) Create(ctx context.Context, in Input) (Object, error) {
	op := &batchOp{
		ctx:   ctx,
		op:    batchInsert,
		kind:  in.InputKind(),
		org:   orgOf(ctx),
		input: in,
		done:  make(chan batchResult, 1),
	}
	return b.wait(ctx, op)
}

func orgOf(ctx context.Context) uuid.UUID {
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return uuid.Nil
	}
	return tc.OrganizationID
}

func (b *Batcher) wait(ctx context.Context, op *batchOp) (Object, error) {
	if !b.enqueue(op) {
		// Closed batcher degrades to direct execution.
		return b.execDirect(op)
	}
	select {
	case res := <-op.done:
		return res.obj, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// enqueue appends the operation and arranges a flush; it never blocks on
// other callers' work. Reports false when the batcher is closed.
func (b *Batcher) enqueue(op *batchOp) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.pending = append(b.pending, op)
	if len(b.pending) >= b.maxSize {
		batch := b.pending
		b.pending = nil
		b.stopTimerLocked()
		b.mu.Unlock()
		metrics.BatchFlushes.WithLabelValues("capacity").Inc()
		go b.flush(batch)
		return true
	}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flushOnTimer)
	}
	b.mu.Unlock()
	return true
}

func (b *Batcher) flushOnTimer() {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()
	if len(batch) == 0 {
		return
	}
	metrics.BatchFlushes.WithLabelValues("timer").Inc()
	b.flush(batch)
}

func (b *Batcher) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Close flushes anything still pending and makes subsequent calls execute
// directly.
func (b *Batcher) Close() {
	b.mu.Lock()
	b.closed = true
	batch := b.pending
	b.pending = nil
	b.stopTimerLocked()
	b.mu.Unlock()
	if len(batch) > 0 {
		b.flush(batch)
	}
}

type batchGroup struct {
	kind Kind
	org  uuid.UUID
	op   batchOpKind
}

func (b *Batcher) flush(batch []*batchOp) {
	groups := make(map[batchGroup][]*batchOp)
	var order []batchGroup
	for _, op := range batch {
		g := batchGroup{kind: op.kind, org: op.org, op: op.op}
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], op)
	}
	for _, g := range order {
		ops := groups[g]
		if len(ops) > 1 {
			metrics.BatchMergedRequests.Add(float64(len(ops)))
		}
		switch g.op {
		case batchGet:
			b.flushGets(g.kind, ops)
		case batchInsert:
			b.flushInserts(g.kind, ops)
		}
	}
}

// flushGets resolves all lookups of one group through a single IN query and
// fans the rows back out by id. Absent ids resolve to (nil, nil) as a direct
// Get would.
func (b *Batcher) flushGets(kind Kind, ops []*batchOp) {
	repo, err := b.registry.Repository(kind)
	if err != nil {
		failAll(ops, err)
		return
	}
	if len(ops) == 1 {
		obj, err := repo.Get(ops[0].ctx, ops[0].id)
		ops[0].done <- batchResult{obj: obj, err: err}
		return
	}
	ids := make([]uuid.UUID, len(ops))
	for i, op := range ops {
		ids[i] = op.id
	}
	objs, err := repo.Query(ops[0].ctx, QueryOptions{}.WithFilter("id", OpIn, ids))
	if err != nil {
		failAll(ops, err)
		return
	}
	byID := make(map[uuid.UUID]Object, len(objs))
	for _, obj := range objs {
		byID[obj.ObjectID()] = obj
	}
	for _, op := range ops {
		op.done <- batchResult{obj: byID[op.id]}
	}
}

// flushInserts writes all inputs of one group in a single multi-row insert.
// The merged statement is all-or-nothing: its failure fails every folded
// request.
func (b *Batcher) flushInserts(kind Kind, ops []*batchOp) {
	repo, err := b.registry.Repository(kind)
	if err != nil {
		failAll(ops, err)
		return
	}
	if len(ops) == 1 {
		obj, err := repo.Create(ops[0].ctx, ops[0].input)
		ops[0].done <- batchResult{obj: obj, err: err}
		return
	}
	ins := make([]Input, len(ops))
	for i, op := range ops {
		ins[i] = op.input
	}
	objs, err := repo.CreateBatch(ops[0].ctx, ins)
	if err != nil {
		failAll(ops, err)
		return
	}
	if len(objs) != len(ops) {
		b.log.Error("merged insert returned unexpected row count",
			slog.Int("want", len(ops)), slog.Int("got", len(objs)))
		failAll(ops, ErrBatchShape)
		return
	}
	for i, op := range ops {
		op.done <- batchResult{obj: objs[i]}
	}
}

func (b *Batcher) execDirect(op *batchOp) (Object, error) {
	repo, err := b.registry.Repository(op.kind)
	if err != nil {
		return nil, err
	}
	switch op.op {
	case batchInsert:
		return repo.Create(op.ctx, op.input)
	default:
		return repo.Get(op.ctx, op.id)
	}
}

func failAll(ops []*batchOp, err error) {
	for _, op := range ops {
		op.done <- batchResult{err: err}
	}
}
