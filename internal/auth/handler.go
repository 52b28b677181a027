package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nova-events/backend/internal/models"
	"github.com/nova-events/backend/pkg/queue"
	"github.com/nova-events/backend/pkg/response"
	"github.com/nova-events/backend/pkg/utils"
)

// Store is the user persistence contract consumed by the handler.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, image string) (*models.User, error)
	DeleteByEmail(ctx context.Context, email string) (*models.User, error)
}

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// DeleteAccountRequest is the body for DELETE /auth/signup (admin only).
type DeleteAccountRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TokenResponse is the login response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth and profile HTTP endpoints.
type Handler struct {
	store  Store
	jwt    *JWTService
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates an auth handler. queue may be nil; welcome emails are
// then skipped.
func NewHandler(store Store, jwt *JWTService, q *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, jwt: jwt, queue: q, logger: logger}
}

// Signup handles POST /auth/signup. New accounts always get the USER role;
// the role never changes afterwards.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name, email and password are required")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	user, err := h.store.Create(c.Request.Context(), req.Name, req.Email, hash, models.RoleUser)
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			response.BadRequest(c, "user already exists")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	if h.queue != nil {
		_ = h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
			EmailType:      queue.EmailTypeWelcome,
			RecipientEmail: user.Email,
			Subject:        "Welcome to Nova Events",
		})
	}

	response.Created(c, gin.H{"user": user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	user, err := h.store.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("get user by email", zap.Error(err))
			response.Internal(c, "failed to log in")
			return
		}
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.logger.Error("generate token", zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, User: user.ToPublic()}})
}

// DeleteAccount handles DELETE /auth/signup (admin only, fresh role check).
func (h *Handler) DeleteAccount(c *gin.Context) {
	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email is required")
		return
	}

	user, err := h.store.DeleteByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		h.logger.Error("delete user", zap.Error(err), zap.String("email", req.Email))
		response.Internal(c, "failed to delete user")
		return
	}

	response.OK(c, gin.H{
		"message": "user deleted",
		"user":    gin.H{"id": user.ID, "email": user.Email},
	})
}
