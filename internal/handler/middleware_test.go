package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lucas-cardozo/turnos-service/internal/metrics"
)

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	c := metrics.NewCollector("handlertest")

	r := chi.NewRouter()
	r.Use(Metrics(c))
	r.Get("/turnos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Many distinct ids through one route must collapse into a single
	// (method, path, status) series, keeping label cardinality bounded.
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/turnos/"+uuid.New().String(), nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.CollectAndCount(c.RequestsTotal); got != 1 {
		t.Errorf("request counter series = %d, want 1 (labelled by route pattern)", got)
	}
	if got := testutil.ToFloat64(c.RequestsTotal.WithLabelValues(http.MethodGet, "/turnos/{id}", "200")); got != 50 {
		t.Errorf("series value = %v, want 50 under the /turnos/{id} pattern", got)
	}
}
