package registrations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shareshine/backend/internal/middleware"
	"github.com/shareshine/backend/internal/models"
	"github.com/shareshine/backend/pkg/response"
)

// Handler handles event registration endpoints.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Register mounts the routes under rg. admin guards the read and delete
// routes when admin auth is enforced; signing up stays public.
func (h *Handler) Register(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	g := rg.Group("/event-registrations")
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, admin...), fn)
	}
	g.POST("", h.Create)
	g.GET("", with(h.List)...)
	g.GET("/summary", with(h.Summary)...)
	g.POST("/viewed", with(h.MarkViewed)...)
	g.GET("/:id", with(h.Get)...)
	g.DELETE("/:id", with(h.Delete)...)
}

// Create handles POST /api/event-registrations.
func (h *Handler) Create(c *gin.Context) {
	var req models.EventRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "request body must be a registration object", err)
		return
	}

	reg, err := h.store.Register(c.Request.Context(), req)
	var missing *MissingFieldError
	var invalid *InvalidFieldError
	switch {
	case errors.As(err, &missing):
		fail(c, http.StatusBadRequest, missing.Error(), nil)
		return
	case errors.As(err, &invalid):
		fail(c, http.StatusBadRequest, invalid.Error(), invalid.Err)
		return
	case errors.Is(err, ErrUnknownEvent):
		fail(c, http.StatusBadRequest, "Unknown event: "+req.EventID, nil)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to save registration", err)
		return
	}
	h.logger.Info("event registration", zap.String("id", reg.ID), zap.String("event_id", reg.EventID))
	response.Created(c, reg)
}

// List handles GET /api/event-registrations?eventId=.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context(), c.Query("eventId"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to list registrations", err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /api/event-registrations/:id.
func (h *Handler) Get(c *gin.Context) {
	reg, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		fail(c, http.StatusNotFound, "Registration not found", nil)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to fetch registration", err)
		return
	}
	response.OK(c, reg)
}

// Delete handles DELETE /api/event-registrations/:id.
func (h *Handler) Delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		fail(c, http.StatusNotFound, "Registration not found", nil)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to delete registration", err)
		return
	}
	response.Confirm(c, "Registration deleted successfully")
}

// Summary handles GET /api/event-registrations/summary.
func (h *Handler) Summary(c *gin.Context) {
	sum, err := h.store.Summary(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to summarize registrations", err)
		return
	}
	response.OK(c, sum)
}

// MarkViewed handles POST /api/event-registrations/viewed.
func (h *Handler) MarkViewed(c *gin.Context) {
	at, err := h.store.MarkViewed(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to record view", err)
		return
	}
	response.OK(c, gin.H{"last_viewed_at": at})
}

func fail(c *gin.Context, status int, msg string, err error) {
	c.Status(status)
	_ = c.Error(&middleware.HTTPError{Status: status, Message: msg, Err: err})
}
