package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nova-events/backend/internal/auth"
	"github.com/nova-events/backend/internal/models"
)

const testSecret = "test-secret"

type fakeResolver struct {
	users map[uuid.UUID]*models.User
}

func (r *fakeResolver) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func guardedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/guarded", chain...)
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT_MissingHeader(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	r := guardedRouter(JWT(svc))

	require.Equal(t, http.StatusUnauthorized, get(r, "").Code)
}

func TestJWT_BadScheme(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	r := guardedRouter(JWT(svc))

	require.Equal(t, http.StatusUnauthorized, get(r, "Basic abc").Code)
}

func TestJWT_ValidToken(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	userID := uuid.New()

	var gotID uuid.UUID
	var gotRole string
	r := guardedRouter(JWT(svc), func(c *gin.Context) {
		gotID = c.MustGet(ContextUserID).(uuid.UUID)
		gotRole = c.MustGet(ContextUserRole).(string)
	})

	token, err := svc.Generate(userID, "a@example.com", "USER")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)
	require.Equal(t, userID, gotID)
	require.Equal(t, "USER", gotRole)
}

func TestJWT_ExpiredAndForgedBothUnauthorized(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	r := guardedRouter(JWT(svc))

	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: uuid.New(),
		Role:   "USER",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-8 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	forged, err := auth.NewJWTService("other-secret", 168).Generate(uuid.New(), "a@example.com", "ADMIN")
	require.NoError(t, err)

	// Distinct internal causes, identical to the caller.
	require.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+expiredToken).Code)
	require.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+forged).Code)
}

func TestRequireRole(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	r := guardedRouter(JWT(svc), RequireRole(models.RoleAdmin))

	adminToken, _ := svc.Generate(uuid.New(), "root@example.com", "ADMIN")
	userToken, _ := svc.Generate(uuid.New(), "alice@example.com", "USER")

	require.Equal(t, http.StatusOK, get(r, "Bearer "+adminToken).Code)
	require.Equal(t, http.StatusForbidden, get(r, "Bearer "+userToken).Code)
}

func TestRequireFreshRole_RevokedAdmin(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	demoted := uuid.New()
	resolver := &fakeResolver{users: map[uuid.UUID]*models.User{
		demoted: {ID: demoted, Role: models.RoleUser},
	}}
	r := guardedRouter(JWT(svc), RequireFreshRole(resolver, models.RoleAdmin))

	// Token still says ADMIN but the store says USER.
	staleToken, _ := svc.Generate(demoted, "demoted@example.com", "ADMIN")
	require.Equal(t, http.StatusForbidden, get(r, "Bearer "+staleToken).Code)
}

func TestRequireFreshRole_DeletedUser(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	resolver := &fakeResolver{users: map[uuid.UUID]*models.User{}}
	r := guardedRouter(JWT(svc), RequireFreshRole(resolver, models.RoleAdmin))

	token, _ := svc.Generate(uuid.New(), "gone@example.com", "ADMIN")
	require.Equal(t, http.StatusForbidden, get(r, "Bearer "+token).Code)
}

func TestRequireFreshRole_CurrentAdmin(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	adminID := uuid.New()
	resolver := &fakeResolver{users: map[uuid.UUID]*models.User{
		adminID: {ID: adminID, Role: models.RoleAdmin},
	}}
	r := guardedRouter(JWT(svc), RequireFreshRole(resolver, models.RoleAdmin))

	token, _ := svc.Generate(adminID, "root@example.com", "ADMIN")
	require.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)
}

func TestRequireNonAdmin(t *testing.T) {
	svc := auth.NewJWTService(testSecret, 168)
	r := guardedRouter(JWT(svc), RequireNonAdmin())

	adminToken, _ := svc.Generate(uuid.New(), "root@example.com", "ADMIN")
	userToken, _ := svc.Generate(uuid.New(), "alice@example.com", "USER")

	require.Equal(t, http.StatusForbidden, get(r, "Bearer "+adminToken).Code)
	require.Equal(t, http.StatusOK, get(r, "Bearer "+userToken).Code)
}
