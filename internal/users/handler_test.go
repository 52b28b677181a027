package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nova-events/backend/internal/middleware"
	"github.com/nova-events/backend/internal/models"
)

type fakeStore struct {
	users map[uuid.UUID]*models.User
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (s *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, name, image string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if image != "" {
		u.Image = image
	}
	return u, nil
}

func profileRouter(store Store, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, string(models.RoleUser))
	})
	r.GET("/user/profile", h.Profile)
	r.PUT("/user/profile", h.UpdateProfile)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProfile(t *testing.T) {
	u := &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	store := &fakeStore{users: map[uuid.UUID]*models.User{u.ID: u}}
	r := profileRouter(store, u.ID)

	w := do(t, r, http.MethodGet, "/user/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice@example.com")
}

func TestProfile_DeletedUser(t *testing.T) {
	// A token can outlive its user; the profile endpoint answers 404 then.
	store := &fakeStore{users: map[uuid.UUID]*models.User{}}
	r := profileRouter(store, uuid.New())

	w := do(t, r, http.MethodGet, "/user/profile", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	u := &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	store := &fakeStore{users: map[uuid.UUID]*models.User{u.ID: u}}
	r := profileRouter(store, u.ID)

	w := do(t, r, http.MethodPut, "/user/profile", gin.H{"name": "Alice B", "image": "https://img.example/a.png"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Alice B", u.Name)
	require.Equal(t, "https://img.example/a.png", u.Image)

	// Partial update keeps the other field.
	w = do(t, r, http.MethodPut, "/user/profile", gin.H{"name": "Alice C"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "https://img.example/a.png", u.Image)
}

func TestUpdateProfile_RequiresNameOrImage(t *testing.T) {
	u := &models.User{ID: uuid.New(), Role: models.RoleUser}
	store := &fakeStore{users: map[uuid.UUID]*models.User{u.ID: u}}
	r := profileRouter(store, u.ID)

	w := do(t, r, http.MethodPut, "/user/profile", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
