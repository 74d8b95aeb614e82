// Package metrics provides observability for the drop module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks mint throughput, rejections by reason, and collection state.
type Metrics struct {
	Minted       prometheus.Counter
	Burned       prometheus.Counter
	MintRejected *prometheus.CounterVec
	MintDuration prometheus.Histogram
	Supply       prometheus.Gauge
	Phase        prometheus.Gauge
}

// New creates a new Metrics instance with all drop module metrics registered.
func New() *Metrics {
	return &Metrics{
		Minted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "curio_tokens_minted_total",
			Help: "Total number of tokens minted",
		}),
		Burned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "curio_tokens_burned_total",
			Help: "Total number of tokens burned",
		}),
		MintRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "curio_mint_rejected_total",
			Help: "Mint attempts rejected, labeled by error code",
		}, []string{"reason"}),
		MintDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "curio_mint_duration_seconds",
			Help:    "Duration of mint operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		Supply: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "curio_tokens_issued",
			Help: "Cumulative tokens issued (highest allocated token ID)",
		}),
		Phase: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "curio_mint_phase",
			Help: "Current mint phase counter",
		}),
	}
}

// IncrementMinted records a successful mint.
func (m *Metrics) IncrementMinted() {
	m.Minted.Inc()
}

// IncrementBurned records a burn.
func (m *Metrics) IncrementBurned() {
	m.Burned.Inc()
}

// IncrementMintRejected records a rejected mint by error code.
func (m *Metrics) IncrementMintRejected(reason string) {
	m.MintRejected.WithLabelValues(reason).Inc()
}

// ObserveMintDuration records the duration of a mint operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveMintDuration(start time.Time) {
	m.MintDuration.Observe(time.Since(start).Seconds())
}

// SetSupply updates the issued-tokens gauge.
func (m *Metrics) SetSupply(n uint64) {
	m.Supply.Set(float64(n))
}

// SetPhase updates the phase gauge.
func (m *Metrics) SetPhase(n uint64) {
	m.Phase.Set(float64(n))
}
