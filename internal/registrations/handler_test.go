package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nova-events/backend/internal/middleware"
	"github.com/nova-events/backend/internal/models"
)

type pair struct {
	userID  uuid.UUID
	eventID uuid.UUID
}

type fakeRegStore struct {
	regs map[pair]*models.Registration
}

func newFakeRegStore() *fakeRegStore {
	return &fakeRegStore{regs: make(map[pair]*models.Registration)}
}

func (s *fakeRegStore) Create(_ context.Context, userID, eventID uuid.UUID) (*models.Registration, error) {
	key := pair{userID, eventID}
	if _, ok := s.regs[key]; ok {
		return nil, models.ErrDuplicateRegistration
	}
	reg := &models.Registration{ID: uuid.New(), UserID: userID, EventID: eventID, CreatedAt: time.Now()}
	s.regs[key] = reg
	return reg, nil
}

func (s *fakeRegStore) Delete(_ context.Context, userID, eventID uuid.UUID) error {
	key := pair{userID, eventID}
	if _, ok := s.regs[key]; !ok {
		return models.ErrNotFound
	}
	delete(s.regs, key)
	return nil
}

func (s *fakeRegStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.RegistrationWithEvent, error) {
	list := []models.RegistrationWithEvent{}
	for key, reg := range s.regs {
		if key.userID == userID {
			list = append(list, models.RegistrationWithEvent{
				Registration: *reg,
				Event:        models.Event{ID: key.eventID, Title: "Event"},
			})
		}
	}
	return list, nil
}

type fakeEventGetter struct {
	events map[uuid.UUID]*models.Event
}

func (g *fakeEventGetter) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if e, ok := g.events[id]; ok {
		return e, nil
	}
	return nil, models.ErrNotFound
}

func regRouter(store Store, events EventGetter, userID uuid.UUID, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, events, nil, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, string(role))
		c.Set(middleware.ContextUserEmail, "user@example.com")
	})
	r.POST("/events/register", middleware.RequireNonAdmin(), h.Register)
	r.DELETE("/events/register", middleware.RequireNonAdmin(), h.Cancel)
	r.GET("/user/registrations", h.ListMine)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
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

func oneEvent() (*fakeEventGetter, uuid.UUID) {
	id := uuid.New()
	return &fakeEventGetter{events: map[uuid.UUID]*models.Event{
		id: {ID: id, Title: "GopherCon", Date: time.Now().Add(72 * time.Hour)},
	}}, id
}

// Register, duplicate, cancel, cancel again: 201, 409, 200, 404.
func TestRegistrationLifecycle(t *testing.T) {
	store := newFakeRegStore()
	events, eventID := oneEvent()
	r := regRouter(store, events, uuid.New(), models.RoleUser)
	body := gin.H{"eventId": eventID.String()}

	w := doJSON(t, r, http.MethodPost, "/events/register", body)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.regs, 1)

	w = doJSON(t, r, http.MethodPost, "/events/register", body)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Len(t, store.regs, 1)

	w = doJSON(t, r, http.MethodDelete, "/events/register", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, store.regs)

	w = doJSON(t, r, http.MethodDelete, "/events/register", body)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister_AdminForbidden(t *testing.T) {
	store := newFakeRegStore()
	events, eventID := oneEvent()
	r := regRouter(store, events, uuid.New(), models.RoleAdmin)

	w := doJSON(t, r, http.MethodPost, "/events/register", gin.H{"eventId": eventID.String()})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, store.regs)

	// Event validity does not matter; the admin is rejected first.
	w = doJSON(t, r, http.MethodPost, "/events/register", gin.H{"eventId": uuid.NewString()})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegister_MissingEventID(t *testing.T) {
	store := newFakeRegStore()
	events, _ := oneEvent()
	r := regRouter(store, events, uuid.New(), models.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/events/register", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_UnknownEvent(t *testing.T) {
	store := newFakeRegStore()
	events, _ := oneEvent()
	r := regRouter(store, events, uuid.New(), models.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/events/register", gin.H{"eventId": uuid.NewString()})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, store.regs)
}

func TestListMine(t *testing.T) {
	store := newFakeRegStore()
	events, eventID := oneEvent()
	userID := uuid.New()
	r := regRouter(store, events, userID, models.RoleUser)

	_, err := store.Create(context.Background(), userID, eventID)
	require.NoError(t, err)
	// Another user's registration stays invisible.
	_, err = store.Create(context.Background(), uuid.New(), eventID)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/user/registrations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.RegistrationWithEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, eventID, resp.Data[0].EventID)
}
