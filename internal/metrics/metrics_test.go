package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("", reg)

	m.IncFilesProcessed("mobile_reward_share", "ok")
	m.AddRecordsRouted("mobile_reward_share", "radio_reward_v2", 3)
	m.AddRecordsRouted("mobile_reward_share", "gateway_reward", 0)
	m.AddRecordsDropped("mobile_reward_share", 2)
	m.ObserveTableWrite("speedtests", 10, 2)
	m.ObserveTableWrite("speedtests", 5, 1)
	m.SetLastFileTimestamp("mobile_reward_share", 1717200000)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesProcessed.WithLabelValues("mobile_reward_share", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsRouted.WithLabelValues("mobile_reward_share", "radio_reward_v2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsDropped.WithLabelValues("mobile_reward_share")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("speedtests")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StatementsExecuted.WithLabelValues("speedtests")))
	assert.Equal(t, 1717200000.0, testutil.ToFloat64(m.LastFileTimestamp.WithLabelValues("mobile_reward_share")))

	// Zero adds create no series.
	assert.Equal(t, 1, testutil.CollectAndCount(m.RecordsRouted))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncFilesProcessed("x", "ok")
	m.AddRecordsRouted("x", "k", 1)
	m.AddRecordsDropped("x", 1)
	m.ObserveTableWrite("t", 1, 1)
	m.ObserveFileDuration("x", 1)
	m.SetLastFileTimestamp("x", 1)
	m.IncSourceErrors("s3")
	m.IncStorageErrors("postgres")
	m.IncRetryAttempts("import")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("test", reg)
	m.IncRetryAttempts("import_file")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_retry_attempts_total{operation="import_file"} 1`))
}
