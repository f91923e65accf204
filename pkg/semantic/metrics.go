package semantic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	runs            prometheus.Counter
	documents       *prometheus.CounterVec
	aliasesResolved prometheus.Counter
	expansions      prometheus.Counter
	cycles          *prometheus.CounterVec
	cacheRequests   prometheus.Counter
	cacheHits       prometheus.Counter
	cacheEvictions  prometheus.Counter
	poolSlots       prometheus.Gauge
	poolLive        prometheus.Gauge
	compactions     prometheus.Counter
	phaseDuration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		runs: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlref_analyzer_runs_total",
			Help: "Total number of analysis runs.",
		}),
		documents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "yamlref_analyzer_documents_total",
			Help: "Total number of analyzed documents by outcome.",
		}, []string{"outcome"}),
		aliasesResolved: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlref_analyzer_aliases_resolved_total",
			Help: "Total number of aliases replaced by their anchored subtree.",
		}),
		expansions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlref_analyzer_expansions_total",
			Help: "Total number of alias expansions, including those served from the cache.",
		}),
		cycles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "yamlref_analyzer_cycles_total",
			Help: "Total number of reference cycles found by type.",
		}, []string{"type"}),
		cacheRequests: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlref_analyzer_cache_requests_total",
			Help: "Total number of resolution cache lookups.",
		}),
		cacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlref_analyzer_cache_hits_total",
			Help: "Total number of resolution cache lookups that were a hit.",
		}),
		cacheEvictions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlref_analyzer_cache_evictions_total",
			Help: "Total number of resolution cache entries evicted.",
		}),
		poolSlots: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "yamlref_analyzer_pool_slots",
			Help: "Number of slots in the reference node pool.",
		}),
		poolLive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "yamlref_analyzer_pool_live_nodes",
			Help: "Number of live nodes in the reference node pool.",
		}),
		compactions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlref_analyzer_pool_compactions_total",
			Help: "Total number of reference pool compactions.",
		}),
		phaseDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yamlref_analyzer_phase_duration_seconds",
			Help:    "Time spent in each analysis phase.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"phase"}),
	}
	for _, outcome := range []string{"resolved", "failed"} {
		m.documents.WithLabelValues(outcome)
	}
	return m
}

// publish copies the counters of a finished run.
func (m *metrics) publish(s *Statistics) {
	m.runs.Inc()
	m.documents.WithLabelValues("resolved").Add(float64(s.Documents - s.FailedDocuments))
	m.documents.WithLabelValues("failed").Add(float64(s.FailedDocuments))
	m.aliasesResolved.Add(float64(s.AliasesResolved))
	m.expansions.Add(float64(s.Expansions))
	m.cacheRequests.Add(float64(s.Cache.Hits + s.Cache.Misses))
	m.cacheHits.Add(float64(s.Cache.Hits))
	m.cacheEvictions.Add(float64(s.Cache.Evictions))
	m.poolSlots.Set(float64(s.Pool.Slots))
	m.poolLive.Set(float64(s.Pool.Live))
	m.compactions.Add(float64(s.Pool.Compactions))
	for t, n := range s.CyclesByType {
		m.cycles.WithLabelValues(t.String()).Add(float64(n))
	}
	for p, d := range s.PhaseDurations {
		m.phaseDuration.WithLabelValues(p.String()).Observe(d.Seconds())
	}
}
