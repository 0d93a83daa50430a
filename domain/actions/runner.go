// Package actions wraps every business mutation in a uniform
// validate, execute, audit pipeline with an error envelope.
package actions

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/audit"
	"github.com/ontoforge/ontology-core/domain/permissions"
	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/logger"
	"github.com/ontoforge/ontology-core/pkg/metrics"
)

// Action is one business mutation. Names follow the Create|Update|Delete|
// Archive verb convention: the audit resource type is the name with the verb
// stripped, so CreateProject audits against resource type Project.
type Action interface {
	Name() string
	Permissions() []permissions.Permission
	// Input returns the payload recorded in audit entries. No secrets.
	Input() map[string]any
	Validate(ctx context.Context) error
	Execute(ctx context.Context) (any, error)
}

// Result is the uniform action envelope. Errors never propagate out of a run;
// they land here as a message.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Runner executes actions through the four phases in order, short-circuiting
// on the first failure. Audit writes are best-effort: their failures are
// logged and swallowed.
type Runner struct {
	checker permissions.Checker
	sink    audit.Sink
	log     *slog.Logger
}

// NewRunner builds a runner. checker and sink may be nil: a nil checker skips
// permission checks, a nil sink skips auditing.
func NewRunner(checker permissions.Checker, sink audit.Sink, log *slog.Logger) *Runner {
	return &Runner{
		checker: checker,
		sink:    sink,
		log:     log.With(logger.Scope("actions")),
	}
}

// Run executes the action and converts any failure into the result envelope,
// recording a <Name>_FAILED audit entry carrying the input and the message.
func (r *Runner) Run(ctx context.Context, a Action) Result {
	if err := r.checkPermissions(ctx, a); err != nil {
		return r.fail(ctx, a, err)
	}
	if err := a.Validate(ctx); err != nil {
		return r.fail(ctx, a, err)
	}
	output, err := a.Execute(ctx)
	if err != nil {
		return r.fail(ctx, a, err)
	}

	r.audit(ctx, a, a.Name(), output, "")
	metrics.ActionRuns.WithLabelValues(a.Name(), "success").Inc()
	return Result{Success: true, Data: output}
}

// checkPermissions is the base validate phase. Skipped entirely when the
// action declares no permissions or no checker is configured.
func (r *Runner) checkPermissions(ctx context.Context, a Action) error {
	perms := a.Permissions()
	if r.checker == nil || len(perms) == 0 {
		return nil
	}
	tc, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	decision, err := r.checker.Check(ctx, tc.UserID, perms, nil)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		reason := decision.Reason
		if reason == "" {
			reason = "not authorized"
		}
		return apperror.ErrForbidden.WithMessage(reason)
	}
	return nil
}

func (r *Runner) fail(ctx context.Context, a Action, err error) Result {
	msg := errorMessage(err)
	r.log.Warn("action failed",
		slog.String("action", a.Name()),
		logger.Error(err))
	r.audit(ctx, a, a.Name()+"_FAILED", nil, msg)
	metrics.ActionRuns.WithLabelValues(a.Name(), "failure").Inc()
	return Result{Success: false, Error: msg}
}

// audit writes one entry, swallowing sink failures.
func (r *Runner) audit(ctx context.Context, a Action, actionName string, output any, errMsg string) {
	if r.sink == nil {
		return
	}
	tc, ok := tenant.FromContext(ctx)
	if !ok {
		return
	}
	details := map[string]any{"input": a.Input()}
	if errMsg != "" {
		details["error"] = errMsg
	}
	entry := audit.Entry{
		UserID:       tc.UserID,
		Action:       actionName,
		ResourceType: resourceType(a.Name()),
		ResourceID:   resourceID(output),
		Details:      details,
	}
	if _, err := r.sink.Log(ctx, entry); err != nil {
		r.log.Warn("audit write failed",
			slog.String("action", actionName),
			logger.Error(err))
	}
}

// resourceType strips the leading verb from an action name: CreateProject
// audits as Project.
func resourceType(name string) string {
	for _, verb := range []string{"Create", "Update", "Delete", "Archive"} {
		if rest, ok := strings.CutPrefix(name, verb); ok && rest != "" {
			return rest
		}
	}
	return name
}

// resourceID reads the output's id when the output exposes one.
func resourceID(output any) *uuid.UUID {
	type identified interface{ ObjectID() uuid.UUID }
	if obj, ok := output.(identified); ok {
		id := obj.ObjectID()
		return &id
	}
	return nil
}

func errorMessage(err error) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
