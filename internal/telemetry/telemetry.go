// Package telemetry exposes Prometheus instruments for the scoring service
// and the settlement loop. Fairness gauges carry the same names the chain
// monitoring stack already scrapes (gini, hhi).
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/animica-labs/poies/internal/scoring"
)

type Telemetry struct {
	Registry *prometheus.Registry

	gini           prometheus.Gauge
	hhi            prometheus.Gauge
	hhiNormalized  prometheus.Gauge
	effectiveCount prometheus.Gauge
	topKShare      prometheus.Gauge

	settlementEpoch     prometheus.Gauge
	settlementProviders prometheus.Gauge
	settlementTotal     *prometheus.CounterVec
	settlementDuration  prometheus.Histogram

	allocationRequests *prometheus.CounterVec
}

func New() *Telemetry {
	registry := prometheus.NewRegistry()

	t := &Telemetry{
		Registry: registry,
		gini: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poies",
			Name:      "gini",
			Help:      "Gini coefficient of the latest capped allocation.",
		}),
		hhi: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poies",
			Name:      "hhi",
			Help:      "Raw Herfindahl-Hirschman index of the latest capped allocation.",
		}),
		hhiNormalized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poies",
			Name:      "hhi_normalized",
			Help:      "HHI rescaled so perfect equality is 0 and full concentration is 1.",
		}),
		effectiveCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poies",
			Name:      "effective_count",
			Help:      "Equivalent number of equally sized entities (1/HHI).",
		}),
		topKShare: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poies",
			Name:      "top_k_share",
			Help:      "Cumulative share of the K largest entities.",
		}),
		settlementEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poies",
			Subsystem: "settlement",
			Name:      "epoch",
			Help:      "Most recently settled epoch.",
		}),
		settlementProviders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poies",
			Subsystem: "settlement",
			Name:      "providers",
			Help:      "Provider count in the most recent settlement.",
		}),
		settlementTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poies",
			Subsystem: "settlement",
			Name:      "runs_total",
			Help:      "Settlement runs by outcome.",
		}, []string{"outcome"}),
		settlementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poies",
			Subsystem: "settlement",
			Name:      "duration_seconds",
			Help:      "Wall time of a settlement run.",
			Buckets:   prometheus.DefBuckets,
		}),
		allocationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poies",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by route and status class.",
		}, []string{"route", "status"}),
	}

	registry.MustRegister(
		t.gini, t.hhi, t.hhiNormalized, t.effectiveCount, t.topKShare,
		t.settlementEpoch, t.settlementProviders, t.settlementTotal, t.settlementDuration,
		t.allocationRequests,
	)

	return t
}

func (t *Telemetry) ObserveFairness(report scoring.FairnessReport) {
	t.gini.Set(report.Gini)
	t.hhi.Set(report.HHI)
	t.hhiNormalized.Set(report.NormalizedHHI)
	t.effectiveCount.Set(report.EffectiveCount)
	t.topKShare.Set(report.TopKShare)
}

func (t *Telemetry) ObserveSettlement(epoch uint64, providers int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.settlementTotal.WithLabelValues(outcome).Inc()
	t.settlementDuration.Observe(duration.Seconds())
	if err == nil {
		t.settlementEpoch.Set(float64(epoch))
		t.settlementProviders.Set(float64(providers))
	}
}

func (t *Telemetry) ObserveRequest(route string, status int) {
	class := "2xx"
	switch {
	case status >= 500:
		class = "5xx"
	case status >= 400:
		class = "4xx"
	case status >= 300:
		class = "3xx"
	}
	t.allocationRequests.WithLabelValues(route, class).Inc()
}
