package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIngestBatch(t *testing.T) {
	accepted := testutil.ToFloat64(ingestEntries.WithLabelValues("accepted"))
	rejected := testutil.ToFloat64(ingestEntries.WithLabelValues("rejected"))
	batches := testutil.ToFloat64(ingestBatches)

	IngestBatch(3, 1)

	assert.InDelta(t, accepted+3, testutil.ToFloat64(ingestEntries.WithLabelValues("accepted")), 0)
	assert.InDelta(t, rejected+1, testutil.ToFloat64(ingestEntries.WithLabelValues("rejected")), 0)
	assert.InDelta(t, batches+1, testutil.ToFloat64(ingestBatches), 0)
}

func TestObserveStorageOutcome(t *testing.T) {
	before := testutil.CollectAndCount(storageDuration)

	ObserveStorage("get", time.Now(), nil)
	ObserveStorage("get", time.Now(), errors.New("down"))

	assert.GreaterOrEqual(t, testutil.CollectAndCount(storageDuration), before)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(storageDuration), 2)
}

func TestHTTPRequestAndDuplicates(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/reports", "200"))
	HTTPRequest("GET", "/api/v1/reports", "200")
	assert.InDelta(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/reports", "200")), 0)

	dup := testutil.ToFloat64(duplicateReports)
	DuplicatesRemoved(2)
	assert.InDelta(t, dup+2, testutil.ToFloat64(duplicateReports), 0)
}
