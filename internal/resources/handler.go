package resources

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareshine/backend/internal/middleware"
	"github.com/shareshine/backend/internal/store"
	"github.com/shareshine/backend/pkg/response"
)

// Handler serves list/get/create/update/delete for one resource.
type Handler struct {
	desc   Descriptor
	store  store.Store
	logger *zap.Logger
}

// NewHandler creates a handler for desc backed by st.
func NewHandler(desc Descriptor, st store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{desc: desc, store: st, logger: logger.With(zap.String("resource", desc.Name))}
}

// Register mounts the resource under rg. admin handlers run before the
// operations the descriptor marks as admin-only.
func (h *Handler) Register(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	g := rg.Group("/" + h.desc.Name)
	chain := func(op Op, fn gin.HandlerFunc) []gin.HandlerFunc {
		if h.desc.Admin&op == 0 || len(admin) == 0 {
			return []gin.HandlerFunc{fn}
		}
		return append(append([]gin.HandlerFunc{}, admin...), fn)
	}
	g.GET("", chain(OpList, h.List)...)
	g.GET("/:id", chain(OpGet, h.Get)...)
	g.POST("", chain(OpCreate, h.Create)...)
	g.PUT("/:id", chain(OpUpdate, h.Update)...)
	g.DELETE("/:id", chain(OpDelete, h.Delete)...)
}

// List handles GET /api/<resource>.
func (h *Handler) List(c *gin.Context) {
	q := store.Query{}
	for _, f := range h.desc.Filterable {
		if v := c.Query(f); v != "" {
			q.Filters = append(q.Filters, store.Filter{Field: f, Value: v})
		}
	}
	order := h.desc.DefaultOrder
	if s := c.Query("sort"); s != "" && h.desc.Sortable {
		parsed, err := parseSort(s)
		if err != nil || !h.desc.hasColumn(parsed.Field) {
			h.fail(c, badRequest("Invalid sort field: "+strings.TrimPrefix(s, "-"), err))
			return
		}
		order = parsed
	}
	q.Order = &order

	rows, err := h.store.Select(c.Request.Context(), h.desc.Table, q)
	if err != nil {
		h.storeFailure(c, "list "+h.desc.Name, "", err)
		return
	}
	if rows == nil {
		rows = []store.Record{}
	}
	response.OK(c, rows)
}

// Get handles GET /api/<resource>/:id.
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.store.Get(c.Request.Context(), h.desc.Table, id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.storeFailure(c, "fetch "+h.singular(), id, err)
		return
	}
	response.OK(c, rec)
}

// Create handles POST /api/<resource>.
func (h *Handler) Create(c *gin.Context) {
	raw, err := readObject(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	if missing := firstMissing(raw, h.desc.Required); missing != "" {
		h.fail(c, badRequest("Missing required field: "+missing, nil))
		return
	}
	rec, err := toRecord(h.desc, raw)
	if err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.store.Insert(c.Request.Context(), h.desc.Table, rec)
	if err != nil {
		h.storeFailure(c, "create "+h.singular(), "", err)
		return
	}
	h.logger.Info("created", zap.String("id", created.ID()))
	response.Created(c, created)
}

// Update handles PUT /api/<resource>/:id. Only the supplied fields change.
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	raw, err := readObject(c.Request.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	rec, err := toRecord(h.desc, raw)
	if err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.store.Update(c.Request.Context(), h.desc.Table, id, rec)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.storeFailure(c, "update "+h.singular(), id, err)
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /api/<resource>/:id. Deleting a missing id is a 404.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.store.Delete(c.Request.Context(), h.desc.Table, id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.storeFailure(c, "delete "+h.singular(), id, err)
		return
	}
	h.logger.Info("deleted", zap.String("id", id))
	response.Confirm(c, h.desc.Singular+" deleted successfully")
}

func (h *Handler) fail(c *gin.Context, err error) {
	var he *middleware.HTTPError
	if errors.As(err, &he) {
		c.Status(he.Status)
	}
	_ = c.Error(err)
}

func (h *Handler) notFound(c *gin.Context) {
	h.fail(c, &middleware.HTTPError{Status: http.StatusNotFound, Message: h.desc.Singular + " not found"})
}

func (h *Handler) storeFailure(c *gin.Context, action, id string, err error) {
	var ce *store.ConstraintError
	if errors.As(err, &ce) {
		msg := "Invalid value for field: " + ce.Column
		switch {
		case ce.Column == "":
			msg = "invalid request body"
		case ce.NotNull:
			msg = "Field cannot be null: " + ce.Column
		}
		h.fail(c, badRequest(msg, err))
		return
	}
	h.logger.Error("store call failed", zap.String("action", action), zap.String("id", id), zap.Error(err))
	h.fail(c, &middleware.HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "Failed to " + action,
		Err:     err,
	})
}

func (h *Handler) singular() string {
	return strings.ToLower(h.desc.Singular)
}

// parseSort reads "field" (ascending) or "-field" (descending).
func parseSort(s string) (store.Order, error) {
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")
	if field == "" {
		return store.Order{}, errors.New("empty sort field")
	}
	return store.Order{Field: field, Desc: desc}, nil
}
