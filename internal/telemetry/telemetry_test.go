package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animica-labs/poies/internal/scoring"
)

func TestObserveFairness(t *testing.T) {
	tel := New()

	tel.ObserveFairness(scoring.FairnessReport{
		Gini:           0.42,
		HHI:            0.3,
		NormalizedHHI:  0.1,
		EffectiveCount: 3.33,
		TopKShare:      0.7,
	})

	assert.InDelta(t, 0.42, testutil.ToFloat64(tel.gini), 1e-12)
	assert.InDelta(t, 0.3, testutil.ToFloat64(tel.hhi), 1e-12)
	assert.InDelta(t, 0.1, testutil.ToFloat64(tel.hhiNormalized), 1e-12)
	assert.InDelta(t, 3.33, testutil.ToFloat64(tel.effectiveCount), 1e-12)
	assert.InDelta(t, 0.7, testutil.ToFloat64(tel.topKShare), 1e-12)
}

func TestObserveSettlement(t *testing.T) {
	tel := New()

	tel.ObserveSettlement(7, 12, 50*time.Millisecond, nil)
	assert.InDelta(t, 7, testutil.ToFloat64(tel.settlementEpoch), 1e-12)
	assert.InDelta(t, 12, testutil.ToFloat64(tel.settlementProviders), 1e-12)
	assert.InDelta(t, 1, testutil.ToFloat64(tel.settlementTotal.WithLabelValues("ok")), 1e-12)

	tel.ObserveSettlement(8, 3, time.Millisecond, assert.AnError)
	// A failed run must not move the epoch gauge.
	assert.InDelta(t, 7, testutil.ToFloat64(tel.settlementEpoch), 1e-12)
	assert.InDelta(t, 1, testutil.ToFloat64(tel.settlementTotal.WithLabelValues("error")), 1e-12)
}

func TestObserveRequest(t *testing.T) {
	tel := New()

	tel.ObserveRequest("/api/v1/allocations", 200)
	tel.ObserveRequest("/api/v1/allocations", 400)
	tel.ObserveRequest("/api/v1/allocations", 502)

	require.InDelta(t, 1, testutil.ToFloat64(tel.allocationRequests.WithLabelValues("/api/v1/allocations", "2xx")), 1e-12)
	require.InDelta(t, 1, testutil.ToFloat64(tel.allocationRequests.WithLabelValues("/api/v1/allocations", "4xx")), 1e-12)
	require.InDelta(t, 1, testutil.ToFloat64(tel.allocationRequests.WithLabelValues("/api/v1/allocations", "5xx")), 1e-12)
}
