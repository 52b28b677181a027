package events

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nova-events/backend/internal/middleware"
	"github.com/nova-events/backend/internal/models"
	"github.com/nova-events/backend/pkg/response"
)

// Store is the event persistence contract consumed by the handler.
type Store interface {
	Create(ctx context.Context, title, description string, date time.Time, location, image string, ownerID uuid.UUID) (*models.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, id uuid.UUID, title, description string, date time.Time, location, image string) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MutateRequest is the body for POST /events and PUT /events/:id.
// All five fields are required for both create and full overwrite.
type MutateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Image       string `json:"image" binding:"required"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store  Store
	cache  *Cache
	logger *zap.Logger
}

// NewHandler creates an event handler. cache may be nil; the list is then
// always served from the store.
func NewHandler(store Store, cache *Cache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, cache: cache, logger: logger}
}

// Create handles POST /events (admin only, fresh role check).
func (h *Handler) Create(c *gin.Context) {
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "all fields are required")
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.BadRequest(c, "invalid date")
		return
	}

	ownerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	event, err := h.store.Create(c.Request.Context(), req.Title, req.Description, date, req.Location, req.Image, ownerID)
	if err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}

	h.invalidate(c.Request.Context())
	response.Created(c, gin.H{"message": "event created", "event": event})
}

// GetByID handles GET /events/:id (public).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("get event", zap.Error(err))
		response.Internal(c, "failed to load event")
		return
	}
	response.OK(c, event)
}

// List handles GET /events (public). Events come back ascending by date;
// an empty list is a valid result.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if h.cache != nil {
		if list := h.cache.GetList(ctx); list != nil {
			response.OK(c, list)
			return
		}
	}

	list, err := h.store.List(ctx)
	if err != nil {
		h.logger.Error("list events", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	if h.cache != nil {
		h.cache.SetList(ctx, list)
	}
	response.OK(c, list)
}

// Update handles PUT /events/:id (admin only). Full overwrite of all five
// fields.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "all fields are required for update")
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.BadRequest(c, "invalid date")
		return
	}

	event, err := h.store.Update(c.Request.Context(), id, req.Title, req.Description, date, req.Location, req.Image)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("update event", zap.Error(err))
		response.Internal(c, "failed to update event")
		return
	}

	h.invalidate(c.Request.Context())
	response.OK(c, gin.H{"message": "event updated", "event": event})
}

// Delete handles DELETE /events/:id (admin only). Registrations for the
// event are removed with it.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("delete event", zap.Error(err))
		response.Internal(c, "failed to delete event")
		return
	}

	h.invalidate(c.Request.Context())
	response.OK(c, gin.H{"message": "event deleted successfully"})
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.cache != nil {
		h.cache.Invalidate(ctx)
	}
}
