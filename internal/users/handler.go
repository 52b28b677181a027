package users

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nova-events/backend/internal/middleware"
	"github.com/nova-events/backend/internal/models"
	"github.com/nova-events/backend/pkg/response"
)

// Store is the slice of user persistence the profile endpoints need.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, image string) (*models.User, error)
}

// UpdateProfileRequest is the body for PUT /user/profile.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Handler handles the authenticated profile endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a profile handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Profile handles GET /user/profile. A valid token for a since-deleted user
// resolves to 404 here.
func (h *Handler) Profile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	user, err := h.store.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("get user", zap.Error(err))
		response.Internal(c, "failed to load profile")
		return
	}

	response.OK(c, gin.H{"user": user.ToPublic()})
}

// UpdateProfile handles PUT /user/profile. Only name and image are mutable;
// role and email never change through this endpoint.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Name == "" && req.Image == "") {
		response.BadRequest(c, "name or image required for update")
		return
	}

	user, err := h.store.UpdateProfile(c.Request.Context(), userID, req.Name, req.Image)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("update profile", zap.Error(err))
		response.Internal(c, "failed to update profile")
		return
	}

	response.OK(c, gin.H{"message": "profile updated", "user": user.ToPublic()})
}
