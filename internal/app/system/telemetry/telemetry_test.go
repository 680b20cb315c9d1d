package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsApplied(t *testing.T) {
	before := testutil.ToFloat64(importRowsApplied)
	RowsApplied(3)
	RowsApplied(0)
	RowsApplied(-2)
	assert.Equal(t, before+3, testutil.ToFloat64(importRowsApplied))
}

func TestImportFailed(t *testing.T) {
	c := importFailures.WithLabelValues(FailureUnknownCode)
	before := testutil.ToFloat64(c)
	ImportFailed(FailureUnknownCode)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestObserveAggregation(t *testing.T) {
	before := testutil.CollectAndCount(aggregationLatency)
	ObserveAggregation("telemetry-test", time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.CollectAndCount(aggregationLatency))
}

func TestInstrument_StatusClass(t *testing.T) {
	h := Instrument("test.endpoint")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	c := apiRequests.WithLabelValues("test.endpoint", "4xx")
	before := testutil.ToFloat64(c)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	RowsApplied(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ideatrack_import_rows_applied_total"))
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 401: "4xx", 500: "5xx", 503: "5xx"}
	for status, want := range tests {
		assert.Equal(t, want, statusClass(status), "status %d", status)
	}
}
