package observability

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRunLoad(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.RunLoadsTotal.WithLabelValues("integrity"))
	RecordRunLoad("integrity", 0.01)
	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.RunLoadsTotal.WithLabelValues("integrity")))

	RecordRunLoad("ok", 0.02)
	assert.Greater(t, testutil.ToFloat64(DefaultMetrics.LastSuccessfulLoad), 0.0)
}

func TestRecordStoreQuery_CountsErrors(t *testing.T) {
	counter := DefaultMetrics.StoreQueryErrors.WithLabelValues("memory", "query_wallet")
	before := testutil.ToFloat64(counter)

	RecordStoreQuery("memory", "query_wallet", 0.001, nil)
	RecordStoreQuery("memory", "query_wallet", 0.001, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestWebsocketGauge(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.WebsocketSessions)
	WebsocketOpened()
	WebsocketOpened()
	WebsocketClosed()
	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.WebsocketSessions))
	WebsocketClosed()
}

func TestHandler(t *testing.T) {
	RecordIntegrityError("price")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `sim_dashboard_pipeline_integrity_errors_total{field="price"}`)
}
