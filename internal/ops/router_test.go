package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invalid8th/bookingbot/internal/booking"
)

func newTestRouter(t *testing.T, token string) (http.Handler, *booking.Store) {
	t.Helper()
	store := booking.NewStore(nil)
	return New(&Config{
		Store:    store,
		Registry: prometheus.NewRegistry(),
		OpsToken: token,
	}), store
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t, "")

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		req := httptest.NewRequest(method, "/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBookingsRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("X-Ops-Token", "secret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBookings(t *testing.T) {
	r, store := newTestRouter(t, "")

	fee := 50
	start := time.Date(2025, 11, 24, 14, 0, 0, 0, time.Local)
	store.AppendFinal(&booking.Booking{
		ID:        uuid.New(),
		ChatID:    42,
		Name:      "Jordan Reyes",
		Handle:    "@jordan",
		Location:  "Shoreditch",
		Quantity:  booking.Hours(3),
		Start:     start,
		End:       start.Add(3 * time.Hour),
		BasePrice: 300,
		TravelFee: &fee,
		Status:    booking.StatusConfirmed,
	})

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var views []bookingView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Jordan Reyes", views[0].Name)
	assert.Equal(t, "lifestyle", views[0].Category)
	assert.Equal(t, 3, views[0].Units)
	require.NotNil(t, views[0].TravelFee)
	assert.Equal(t, 50, *views[0].TravelFee)
	assert.Equal(t, "confirmed", views[0].Status)
}
