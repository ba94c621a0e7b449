package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/comments/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/comments/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/comments/{itemId}", "404"))
	assert.Equal(t, 3.0, got)
}

func TestEvent(t *testing.T) {
	m := New()
	m.Event(EventItemApproved)
	m.Event(EventItemApproved)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(EventItemApproved)))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.Event(EventItemApproved) })
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Event(EventCommentCreated)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `najdeno_events_total{event="comment_created"} 1`)
}
