package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMeasure_CountsStatusCode(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("418"))

	h := Measure(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("418")))
}

func TestObserveBackend(t *testing.T) {
	ok := testutil.ToFloat64(BackendRequests.WithLabelValues("products", "success"))
	bad := testutil.ToFloat64(BackendRequests.WithLabelValues("products", "failure"))

	ObserveBackend("products", time.Now(), nil)
	ObserveBackend("products", time.Now(), errors.New("down"))

	assert.Equal(t, ok+1, testutil.ToFloat64(BackendRequests.WithLabelValues("products", "success")))
	assert.Equal(t, bad+1, testutil.ToFloat64(BackendRequests.WithLabelValues("products", "failure")))
}
