package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deptbook/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

/* ==================== MOCKS ==================== */

type MockActivityReader struct {
	mock.Mock
}

func (m *MockActivityReader) ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityEntry), args.Error(1)
}

type MockResourceLister struct {
	mock.Mock
}

func (m *MockResourceLister) List(ctx context.Context) ([]domain.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resource), args.Error(1)
}

type MockReservationCounter struct {
	mock.Mock
}

func (m *MockReservationCounter) CountByStatus(ctx context.Context, since time.Time) (map[domain.ReservationStatus]int64, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.ReservationStatus]int64), args.Error(1)
}

var now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newMockService() (*Service, *MockActivityReader, *MockResourceLister, *MockReservationCounter) {
	activity := new(MockActivityReader)
	resources := new(MockResourceLister)
	counter := new(MockReservationCounter)
	svc := NewService(activity, resources, counter)
	svc.now = func() time.Time { return now }
	return svc, activity, resources, counter
}

/* ==================== TESTS ==================== */

func TestRecentActivity_ClampsLimit(t *testing.T) {
	svc, activity, _, _ := newMockService()
	ctx := context.Background()

	activity.On("ListRecent", ctx, 50).Return([]domain.ActivityEntry{{ID: "e1"}}, nil).Once()
	activity.On("ListRecent", ctx, 200).Return([]domain.ActivityEntry{}, nil).Once()
	activity.On("ListRecent", ctx, 5).Return([]domain.ActivityEntry{}, nil).Once()

	got, err := svc.RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.RecentActivity(ctx, 10_000)
	require.NoError(t, err)
	_, err = svc.RecentActivity(ctx, 5)
	require.NoError(t, err)

	activity.AssertExpectations(t)
}

func TestGetStats(t *testing.T) {
	svc, _, resources, counter := newMockService()
	ctx := context.Background()

	resources.On("List", ctx).Return([]domain.Resource{
		{ID: "mm-1", Capacity: 6},
		{ID: "401", Capacity: 26},
		{ID: "broken", Capacity: 0},
	}, nil)
	counter.On("CountByStatus", ctx, time.Time{}).Return(map[domain.ReservationStatus]int64{
		domain.ReservationConfirmed: 10,
		domain.ReservationCancelled: 3,
	}, nil)
	counter.On("CountByStatus", ctx, now).Return(map[domain.ReservationStatus]int64{
		domain.ReservationConfirmed: 4,
	}, nil)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Resources)
	assert.Equal(t, 33, stats.TotalCapacity)
	assert.Equal(t, int64(10), stats.ConfirmedReservations)
	assert.Equal(t, int64(3), stats.CancelledReservations)
	assert.Equal(t, int64(4), stats.UpcomingReservations)
}

func TestGetStats_PropagatesErrors(t *testing.T) {
	svc, _, resources, _ := newMockService()
	ctx := context.Background()
	resources.On("List", ctx).Return(nil, errors.New("db down"))

	_, err := svc.GetStats(ctx)
	assert.Error(t, err)
}

func TestHandler_GetActivity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, activity, _, _ := newMockService()
	activity.On("ListRecent", mock.Anything, 2).Return([]domain.ActivityEntry{
		{ID: "e1", UserID: "u-1", Action: domain.ActionReservationCreate, TargetID: "r-1"},
	}, nil)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1/admin"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/activity?limit=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Data struct {
			Activity []map[string]any `json:"activity"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Len(t, env.Data.Activity, 1)
	assert.Equal(t, "reservation_create", env.Data.Activity[0]["action_type"])

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/activity?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
