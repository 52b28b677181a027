package registrations

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nova-events/backend/internal/middleware"
	"github.com/nova-events/backend/internal/models"
	"github.com/nova-events/backend/pkg/queue"
	"github.com/nova-events/backend/pkg/response"
)

// Store is the registration persistence contract consumed by the handler.
type Store interface {
	Create(ctx context.Context, userID, eventID uuid.UUID) (*models.Registration, error)
	Delete(ctx context.Context, userID, eventID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RegistrationWithEvent, error)
}

// EventGetter resolves events for the pre-insert existence check.
type EventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Request is the body for POST and DELETE /events/register.
type Request struct {
	EventID string `json:"eventId" binding:"required"`
}

// Handler handles registration HTTP endpoints. Routes are guarded upstream:
// authenticated, non-admin.
type Handler struct {
	store  Store
	events EventGetter
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates a registrations handler. queue may be nil; confirmation
// emails are then skipped.
func NewHandler(store Store, events EventGetter, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, events: events, queue: q, logger: logger}
}

// Register handles POST /events/register. The duplicate check rides on the
// storage-level unique constraint, so two concurrent attempts cannot both
// succeed.
func (h *Handler) Register(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "event ID is required")
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("resolve event", zap.Error(err))
		response.Internal(c, "failed to register")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	reg, err := h.store.Create(c.Request.Context(), userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateRegistration):
			response.Conflict(c, "already registered for this event")
		case errors.Is(err, models.ErrNotFound):
			response.NotFound(c, "event not found")
		default:
			h.logger.Error("create registration", zap.Error(err), zap.String("event_id", eventID.String()))
			response.Internal(c, "failed to register")
		}
		return
	}

	if h.queue != nil {
		email, _ := c.MustGet(middleware.ContextUserEmail).(string)
		_ = h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
			EmailType:      queue.EmailTypeRegistration,
			RecipientEmail: email,
			Subject:        "Registration confirmed: " + event.Title,
			EventID:        event.ID,
			EventTitle:     event.Title,
		})
	}

	response.Created(c, gin.H{"message": "registered successfully", "registration": reg})
}

// Cancel handles DELETE /events/register. Only the caller's own registration
// can be cancelled.
func (h *Handler) Cancel(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "event ID is required")
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.BadRequest(c, "invalid event ID")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.store.Delete(c.Request.Context(), userID, eventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("delete registration", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, "failed to cancel registration")
		return
	}

	response.OK(c, gin.H{"message": "registration cancelled"})
}

// ListMine handles GET /user/registrations.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.store.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list registrations", zap.Error(err))
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, list)
}
