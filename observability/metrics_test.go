package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-sync/models"
)

func TestObserveDataset(t *testing.T) {
	m := NewMetrics()
	m.ObserveDataset("jpnfood", models.PhaseSuccess, 2*time.Second)
	m.ObserveDataset("jpnfood", models.PhaseSuccess, time.Second)
	m.ObserveDataset("chifood", models.PhaseFailed, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("jpnfood", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("chifood", "failed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestAddRecords(t *testing.T) {
	m := NewMetrics()
	m.AddRecords("lunch", StageFetched, 2500)
	m.AddRecords("lunch", StageDropped, 0)
	m.AddRecords("lunch", StageUpserted, 2400)

	assert.Equal(t, 2500.0, testutil.ToFloat64(m.records.WithLabelValues("lunch", StageFetched)))
	assert.Equal(t, 2400.0, testutil.ToFloat64(m.records.WithLabelValues("lunch", StageUpserted)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.records), "zero increments must not create series")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.ObserveDataset("jpnfood", models.PhaseSuccess, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `restaurant_sync_runs_total{dataset="jpnfood",result="success"} 1`))
	assert.Contains(t, body, "restaurant_sync_duration_seconds_bucket")
}
