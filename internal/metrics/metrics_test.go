package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordMatch_EmptyTierCountsAsNone(t *testing.T) {
	before := testutil.ToFloat64(matchesTotal.WithLabelValues("none"))
	RecordMatch("")
	assert.Equal(t, before+1, testutil.ToFloat64(matchesTotal.WithLabelValues("none")))

	beforeAlias := testutil.ToFloat64(matchesTotal.WithLabelValues("alias"))
	RecordMatch("alias")
	assert.Equal(t, beforeAlias+1, testutil.ToFloat64(matchesTotal.WithLabelValues("alias")))
}

func TestRecordFetch_CountsFailuresOnly(t *testing.T) {
	before := testutil.ToFloat64(candidateFetchErrorsTotal)
	RecordFetch(0.01, false)
	assert.Equal(t, before, testutil.ToFloat64(candidateFetchErrorsTotal))
	RecordFetch(0.02, true)
	assert.Equal(t, before+1, testutil.ToFloat64(candidateFetchErrorsTotal))
}

func TestCountersByLabel(t *testing.T) {
	before := testutil.ToFloat64(candidateCacheTotal.WithLabelValues(CacheStale))
	RecordCache(CacheStale)
	assert.Equal(t, before+1, testutil.ToFloat64(candidateCacheTotal.WithLabelValues(CacheStale)))

	beforeFb := testutil.ToFloat64(feedbackTotal.WithLabelValues("resolved"))
	RecordFeedback("resolved")
	assert.Equal(t, beforeFb+1, testutil.ToFloat64(feedbackTotal.WithLabelValues("resolved")))

	beforeTrunc := testutil.ToFloat64(batchTruncatedTotal)
	RecordBatchTruncated()
	assert.Equal(t, beforeTrunc+1, testutil.ToFloat64(batchTruncatedTotal))
}

func TestObserveResolve_Registers(t *testing.T) {
	ObserveResolve("fuzzy_search", 0.003)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(resolveSeconds), 1)
}
