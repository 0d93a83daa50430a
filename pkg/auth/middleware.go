// Package auth installs the tenant context at the request boundary. It parses
// the bearer token, resolves the target organization, and verifies the user's
// membership before any core code runs.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"go.uber.org/fx"

	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/internal/config"
	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// OrganizationHeader selects the target organization when the user belongs to
// more than one.
const OrganizationHeader = "X-Organization-ID"

const statusActive = "active"

// Claims are the JWT claims the boundary reads: subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// membership is the slice of the members table the boundary needs. Queried
// directly rather than through the store: no tenant context exists yet at
// this point.
type membership struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	OrganizationID uuid.UUID `bun:"organization_id,type:uuid"`
	UserID         uuid.UUID `bun:"user_id,type:uuid"`
	Email          string    `bun:"email"`
	Role           string    `bun:"role"`
	Status         string    `bun:"status"`
	CreatedAt      time.Time `bun:"created_at"`
}

// Middleware authenticates requests and installs the tenant context.
type Middleware struct {
	cfg *config.Config
	db  bun.IDB
	log *slog.Logger
}

func NewMiddleware(cfg *config.Config, db bun.IDB, log *slog.Logger) *Middleware {
	return &Middleware{
		cfg: cfg,
		db:  db,
		log: log.With(logger.Scope("auth")),
	}
}

// Require rejects unauthenticated requests and scopes authenticated ones to
// one organization.
func (m *Middleware) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, email, err := m.authenticate(c)
			if err != nil {
				return err
			}
			member, err := m.resolveMembership(c, userID)
			if err != nil {
				return err
			}
			if member.Status != statusActive {
				return apperror.ErrForbidden.WithMessage("membership is not active")
			}
			if email == "" {
				email = member.Email
			}
			tc := tenant.Context{
				OrganizationID: member.OrganizationID,
				UserID:         userID,
				UserEmail:      email,
				Role:           tenant.Role(member.Role),
			}
			ctx := tenant.WithContext(c.Request().Context(), tc)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func (m *Middleware) authenticate(c echo.Context) (uuid.UUID, string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return uuid.Nil, "", apperror.ErrUnauthorized.WithMessage("missing bearer token")
	}

	if m.cfg.Auth.AllowDebugTokens && m.cfg.Debug {
		if raw, ok := strings.CutPrefix(token, "debug:"); ok {
			id, err := uuid.Parse(raw)
			if err != nil {
				return uuid.Nil, "", apperror.ErrUnauthorized.WithMessage("malformed debug token")
			}
			return id, "", nil
		}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		m.log.Debug("token rejected", logger.Error(err))
		return uuid.Nil, "", apperror.ErrUnauthorized.WithMessage("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", apperror.ErrUnauthorized.WithMessage("token subject is not a user id")
	}
	return userID, claims.Email, nil
}

// resolveMembership picks the organization for this request: an explicit
// header if present, else the user's sole active membership.
func (m *Middleware) resolveMembership(c echo.Context, userID uuid.UUID) (*membership, error) {
	ctx := c.Request().Context()

	if raw := c.Request().Header.Get(OrganizationHeader); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperror.NewBadRequest("malformed organization id header")
		}
		member, err := m.findMembership(ctx, userID, &orgID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, apperror.NewNotFound("membership", orgID.String())
		}
		return member, nil
	}

	memberships, err := m.activeMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch len(memberships) {
	case 0:
		return nil, apperror.ErrForbidden.WithMessage("user has no active membership")
	case 1:
		return memberships[0], nil
	default:
		return nil, apperror.NewBadRequest("user belongs to multiple organizations; set " + OrganizationHeader)
	}
}

func (m *Middleware) findMembership(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) (*membership, error) {
	rec := new(membership)
	err := m.db.NewSelect().
		Model(rec).
		Where("user_id = ?", userID).
		Where("organization_id = ?", *orgID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return rec, nil
}

func (m *Middleware) activeMemberships(ctx context.Context, userID uuid.UUID) ([]*membership, error) {
	var recs []*membership
	err := m.db.NewSelect().
		Model(&recs).
		Where("user_id = ?", userID).
		Where("status = ?", statusActive).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return recs, nil
}

var Module = fx.Module("auth",
	fx.Provide(NewMiddleware),
)
