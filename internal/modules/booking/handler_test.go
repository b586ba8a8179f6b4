package booking

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"deptbook/internal/domain"
	"deptbook/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _ := newStoreService(t,
		domain.Resource{ID: "room-1", Name: "Room 1", Type: domain.ResourceRoom, Capacity: 1},
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User-ID"); userID != "" {
			role := c.GetHeader("X-Test-Role")
			if role == "" {
				role = domain.RoleMember
			}
			middleware.SetActor(c, domain.Actor{UserID: userID, Role: role})
		}
		c.Next()
	})

	v1 := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(v1)
	return r
}

func doJSONRequest(r http.Handler, method, path string, body any, userID string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User-ID", userID)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func reservationBody(start, end, title string) map[string]any {
	return map[string]any{"start_time": start, "end_time": end, "title": title}
}

func TestHandler_CreateAndConflict(t *testing.T) {
	r := setupTestRouter(t)

	rr, env := doJSONRequest(r, http.MethodPost, "/api/v1/resources/room-1/reservations",
		reservationBody("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z", "Meeting A"), "alice")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.True(t, env.Success)

	var created struct {
		Reservation domain.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "alice", created.Reservation.UserID)
	assert.Equal(t, domain.ReservationConfirmed, created.Reservation.Status)

	rr, env = doJSONRequest(r, http.MethodPost, "/api/v1/resources/room-1/reservations",
		reservationBody("2024-01-01T09:30:00Z", "2024-01-01T10:30:00Z", "Meeting B"), "bob")
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "RESERVATION_CONFLICT", env.Error.Code)

	var details ConflictError
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, 1, details.PeakCount)
	assert.Equal(t, 1, details.Capacity)
	assert.Equal(t, "alice", details.ConflictingOwnerID)
}

func TestHandler_CreateErrors(t *testing.T) {
	r := setupTestRouter(t)

	rr, env := doJSONRequest(r, http.MethodPost, "/api/v1/resources/room-1/reservations",
		reservationBody("2024-01-01T10:00:00Z", "2024-01-01T09:00:00Z", "Backwards"), "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rr, _ = doJSONRequest(r, http.MethodPost, "/api/v1/resources/room-1/reservations",
		map[string]any{"title": "no times"}, "alice")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, env = doJSONRequest(r, http.MethodPost, "/api/v1/resources/nope/reservations",
		reservationBody("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z", "x"), "alice")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, _ = doJSONRequest(r, http.MethodPost, "/api/v1/resources/room-1/reservations",
		reservationBody("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z", "anon"), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_CancelOwnership(t *testing.T) {
	r := setupTestRouter(t)

	_, env := doJSONRequest(r, http.MethodPost, "/api/v1/resources/room-1/reservations",
		reservationBody("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z", "Meeting A"), "alice")
	var created struct {
		Reservation domain.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	path := "/api/v1/reservations/" + created.Reservation.ID

	rr, env := doJSONRequest(r, http.MethodDelete, path, nil, "bob")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	rr, _ = doJSONRequest(r, http.MethodDelete, path, nil, "alice")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env = doJSONRequest(r, http.MethodGet, path, nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"status":"cancelled"`)

	rr, _ = doJSONRequest(r, http.MethodDelete, "/api/v1/reservations/does-not-exist", nil, "alice")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_StatusTimelineAndCalendar(t *testing.T) {
	r := setupTestRouter(t)
	doJSONRequest(r, http.MethodPost, "/api/v1/resources/room-1/reservations",
		reservationBody("2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z", "Meeting A"), "alice")

	rr, env := doJSONRequest(r, http.MethodGet, "/api/v1/resources/room-1/status?at=2024-01-01T09:30:00Z", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	var snap StatusSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, StateOccupied, snap.State)
	assert.Equal(t, 30, snap.RemainingMinutes)

	rr, _ = doJSONRequest(r, http.MethodGet, "/api/v1/resources/room-1/status?at=yesterday", nil, "bob")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/resources/status?at=2024-01-01T09:30:00Z", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), `"resource_id":"room-1"`)

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/resources/room-1/timeline?date=2024-01-01", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	var tl DayTimeline
	require.NoError(t, json.Unmarshal(env.Data, &tl))
	assert.Len(t, tl.Slots, 14)

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/resources/room-1/reservations?from=2024-01-01T00:00:00Z&to=2024-01-02T00:00:00Z", nil, "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), "Meeting A")

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/reservations/me", nil, "alice")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, string(env.Data), "Meeting A")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources/room-1/calendar.ics", nil)
	req.Header.Set("X-Test-User-ID", "bob")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "SUMMARY:Meeting A")
}
