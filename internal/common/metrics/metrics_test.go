// internal/common/metrics/metrics_test.go
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCompletedAndFailedAreSeparateSeries(t *testing.T) {
	RecordCompleted("evaluate-job-posting")
	RecordCompleted("evaluate-job-posting")
	RecordFailed("evaluate-job-posting", "EMPLOYER_LOOKUP_FAILED")

	completed := testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("evaluate-job-posting"))
	failed := testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("evaluate-job-posting", "EMPLOYER_LOOKUP_FAILED"))

	assert.Equal(t, 2.0, completed)
	assert.Equal(t, 1.0, failed)
}

func TestRecordFailedSplitsByErrorCode(t *testing.T) {
	RecordFailed("create-application-record", "DUPLICATE_APPLICATION")
	RecordFailed("create-application-record", "DATABASE_INSERT_FAILED")

	assert.Equal(t, 1.0, testutil.ToFloat64(
		WorkerJobsFailed.WithLabelValues("create-application-record", "DUPLICATE_APPLICATION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		WorkerJobsFailed.WithLabelValues("create-application-record", "DATABASE_INSERT_FAILED")))
}
