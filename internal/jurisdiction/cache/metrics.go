package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "depositguard_ruleset_cache_lookups_total",
	Help: "Rule-set cache lookups by backend and result",
}, []string{"backend", "result"})

func observe(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	lookups.WithLabelValues(backend, result).Inc()
}
