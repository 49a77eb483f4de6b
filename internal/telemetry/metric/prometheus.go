// Package metric provides Prometheus metrics for tokfactory.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace is the metric namespace used when none is configured.
const DefaultNamespace = "tokfactory"

// ResultOK is the result label of a successful transfer.
const ResultOK = "ok"

// Registry holds all application metrics.
type Registry struct {
	namespace string
	registry  *prometheus.Registry

	TokensCreated       prometheus.Counter
	TokenCreateFailures *prometheus.CounterVec
	Transfers           *prometheus.CounterVec
	TransferredAmount   prometheus.Counter
	RegistryTokens      prometheus.Gauge
}

// NewRegistry creates a registry with all ledger metrics registered.
func NewRegistry(namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()

	r := &Registry{
		namespace: namespace,
		registry:  reg,
		TokensCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_created_total",
			Help:      "Number of tokens created by the factory",
		}),
		TokenCreateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_create_failures_total",
			Help:      "Number of rejected token creations by error code",
		}, []string{"code"}),
		Transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Number of batch transfers by result",
		}, []string{"result"}),
		TransferredAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transferred_amount_total",
			Help:      "Sum of amounts moved by successful transfers",
		}),
		RegistryTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_tokens",
			Help:      "Number of tokens indexed by the registry",
		}),
	}

	reg.MustRegister(
		r.TokensCreated,
		r.TokenCreateFailures,
		r.Transfers,
		r.TransferredAmount,
		r.RegistryTokens,
		collectors.NewGoCollector(),
	)

	return r
}

// Namespace returns the metric namespace.
func (r *Registry) Namespace() string {
	if r == nil {
		return DefaultNamespace
	}
	return r.namespace
}

// Prometheus returns the underlying registry for components that register
// their own collectors (e.g. the badger engine).
func (r *Registry) Prometheus() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// TokenCreated records a successful creation.
func (r *Registry) TokenCreated() {
	if r == nil {
		return
	}
	r.TokensCreated.Inc()
}

// TokenCreateFailed records a rejected creation.
func (r *Registry) TokenCreateFailed(code string) {
	if r == nil {
		return
	}
	r.TokenCreateFailures.WithLabelValues(labelCode(code)).Inc()
}

// TransferCompleted records a successful transfer of amount.
func (r *Registry) TransferCompleted(amount uint64) {
	if r == nil {
		return
	}
	r.Transfers.WithLabelValues(ResultOK).Inc()
	r.TransferredAmount.Add(float64(amount))
}

// TransferFailed records a rejected transfer.
func (r *Registry) TransferFailed(code string) {
	if r == nil {
		return
	}
	r.Transfers.WithLabelValues(labelCode(code)).Inc()
}

// SetRegistryTokens sets the registry size gauge.
func (r *Registry) SetRegistryTokens(n int) {
	if r == nil {
		return
	}
	r.RegistryTokens.Set(float64(n))
}

func labelCode(code string) string {
	if code == "" {
		return "unknown"
	}
	return code
}
