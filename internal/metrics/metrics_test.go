package metrics

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

func TestRecordMessage(t *testing.T) {
	before := testutil.ToFloat64(messagesTotal.WithLabelValues("await_date"))
	RecordMessage("await_date")
	assert.Equal(t, before+1, testutil.ToFloat64(messagesTotal.WithLabelValues("await_date")))
}

func TestRecordRender(t *testing.T) {
	ok := testutil.ToFloat64(rendersTotal.WithLabelValues("ok"))
	failed := testutil.ToFloat64(rendersTotal.WithLabelValues("error"))

	RecordRender(nil, 2, 10*time.Millisecond)
	RecordRender(errors.New("boom"), 0, time.Millisecond)

	assert.Equal(t, ok+1, testutil.ToFloat64(rendersTotal.WithLabelValues("ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(rendersTotal.WithLabelValues("error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	Init()
	Init()
	RecordPruned(1)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "itinerary_artifacts_pruned_total"))
}
