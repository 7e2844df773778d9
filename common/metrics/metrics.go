package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "graphql_console"

var (
	SchemaParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schema_parses_total",
		Help:      "Number of schema definitions parsed, by result.",
	}, []string{"result"})

	SchemaCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schema_cache_lookups_total",
		Help:      "Schema cache lookups, by cache and outcome.",
	}, []string{"cache", "outcome"})

	ResolverValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolver_validations_total",
		Help:      "Resolver YAML validations, by resolver kind and result.",
	}, []string{"kind", "result"})

	BackendCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_call_duration_seconds",
		Help:      "Latency of calls to the control plane backend.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "operation", "result"})

	EndpointProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explorer_endpoint_probes_total",
		Help:      "Connectivity probes against live GraphQL endpoints, by result.",
	}, []string{"result"})
)

// Result renders an error as a metric label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
