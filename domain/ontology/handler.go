package ontology

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// Handler exposes the object/link store over HTTP. It only parses and
// delegates; all semantics live in the store.
type Handler struct {
	store   Store
	batcher *Batcher
}

func NewHandler(store Store, batcher *Batcher) *Handler {
	return &Handler{store: store, batcher: batcher}
}

func (h *Handler) pathKind(c echo.Context) (Kind, error) {
	return ParseKind(c.Param("kind"))
}

func (h *Handler) pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequest("malformed id " + c.Param(name))
	}
	return id, nil
}

// Get returns one object by kind and id.
// GET /api/v1/objects/:kind/:id
func (h *Handler) Get(c echo.Context) error {
	kind, err := h.pathKind(c)
	if err != nil {
		return err
	}
	id, err := h.pathID(c, "id")
	if err != nil {
		return err
	}
	obj, err := h.batcher.Get(c.Request().Context(), kind, id)
	if err != nil {
		return err
	}
	if obj == nil {
		return apperror.NewNotFound(string(kind), id.String())
	}
	return c.JSON(http.StatusOK, obj)
}

// Query runs a filtered query against one kind.
// POST /api/v1/objects/:kind/query
func (h *Handler) Query(c echo.Context) error {
	kind, err := h.pathKind(c)
	if err != nil {
		return err
	}
	var opts QueryOptions
	if err := c.Bind(&opts); err != nil {
		return apperror.NewBadRequest("malformed query options")
	}
	objs, err := h.store.QueryObjects(c.Request().Context(), kind, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": objs})
}

// Count counts objects matching the filters.
// POST /api/v1/objects/:kind/count
func (h *Handler) Count(c echo.Context) error {
	kind, err := h.pathKind(c)
	if err != nil {
		return err
	}
	var opts QueryOptions
	if err := c.Bind(&opts); err != nil {
		return apperror.NewBadRequest("malformed query options")
	}
	count, err := h.store.CountObjects(c.Request().Context(), kind, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"count": count})
}

// Create stores one new object of the kind.
// POST /api/v1/objects/:kind
func (h *Handler) Create(c echo.Context) error {
	kind, err := h.pathKind(c)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperror.NewBadRequest("unreadable request body")
	}
	in, err := DecodeInput(kind, body)
	if err != nil {
		return err
	}
	obj, err := h.store.CreateObject(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, obj)
}

// Update applies a partial update.
// PATCH /api/v1/objects/:kind/:id
func (h *Handler) Update(c echo.Context) error {
	kind, err := h.pathKind(c)
	if err != nil {
		return err
	}
	id, err := h.pathID(c, "id")
	if err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperror.NewBadRequest("unreadable request body")
	}
	patch, err := DecodePatch(kind, body)
	if err != nil {
		return err
	}
	obj, err := h.store.UpdateObject(c.Request().Context(), kind, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obj)
}

// Delete removes one object and every link touching it.
// DELETE /api/v1/objects/:kind/:id
func (h *Handler) Delete(c echo.Context) error {
	kind, err := h.pathKind(c)
	if err != nil {
		return err
	}
	id, err := h.pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteObject(c.Request().Context(), kind, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Linked resolves the targets of one link kind from a source object.
// GET /api/v1/objects/:kind/:id/linked/:linkType
func (h *Handler) Linked(c echo.Context) error {
	sourceKind, err := h.pathKind(c)
	if err != nil {
		return err
	}
	id, err := h.pathID(c, "id")
	if err != nil {
		return err
	}
	kind, err := ParseLinkKind(c.Param("linkType"))
	if err != nil {
		return err
	}
	if spec, err := kind.Spec(); err == nil && spec.Source != sourceKind {
		return apperror.NewBadRequest("link type " + string(kind) + " does not start at kind " + string(sourceKind))
	}
	objs, err := h.store.GetLinkedObjects(c.Request().Context(), id, kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": objs})
}

type createLinkRequest struct {
	SourceID uuid.UUID      `json:"source_id"`
	TargetID uuid.UUID      `json:"target_id"`
	LinkType string         `json:"link_type"`
	Metadata map[string]any `json:"metadata"`
}

// CreateLink upserts a typed edge between two objects.
// POST /api/v1/links
func (h *Handler) CreateLink(c echo.Context) error {
	var req createLinkRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed link payload")
	}
	kind, err := ParseLinkKind(req.LinkType)
	if err != nil {
		return err
	}
	link, err := h.store.CreateLink(c.Request().Context(), req.SourceID, req.TargetID, kind, req.Metadata)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, link)
}

// DeleteLink removes one edge by id.
// DELETE /api/v1/links/:id
func (h *Handler) DeleteLink(c echo.Context) error {
	id, err := h.pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteLink(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type batchQueryRequest struct {
	Queries []BatchRequest `json:"queries"`
}

// BatchQuery runs several queries concurrently, results in input order.
// POST /api/v1/batch-query
func (h *Handler) BatchQuery(c echo.Context) error {
	var req batchQueryRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed batch query payload")
	}
	for _, q := range req.Queries {
		if !q.Kind.Valid() {
			return apperror.ErrUnknownType.WithMessagef("unknown object type %q", q.Kind)
		}
	}
	results, err := h.store.BatchQuery(c.Request().Context(), req.Queries)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": results})
}
