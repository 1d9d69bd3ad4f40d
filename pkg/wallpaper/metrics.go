package wallpaper

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles prometheus collectors used by the scheduler and fetcher.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CyclesTotal      *prometheus.CounterVec
	MetadataFailures prometheus.Counter
	Downloads        prometheus.Counter
	DownloadBytes    prometheus.Counter
	NextCycleDelay   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bingwall_cycles_total",
			Help: "Total number of update cycles by outcome.",
		}, []string{"outcome"}),
		MetadataFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bingwall_metadata_failures_total",
			Help: "Total number of cycles that could not load image metadata.",
		}),
		Downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bingwall_downloads_total",
			Help: "Total number of images downloaded and saved.",
		}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bingwall_download_bytes_total",
			Help: "Total number of bytes received by the fetcher.",
		}),
		NextCycleDelay: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bingwall_next_cycle_delay_seconds",
			Help: "Delay before the next scheduled cycle.",
		}),
	}

	registry.MustRegister(
		m.CyclesTotal,
		m.MetadataFailures,
		m.Downloads,
		m.DownloadBytes,
		m.NextCycleDelay,
	)

	return m
}

func (m *Metrics) observeOutcome(o CycleOutcome) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(o.Kind.String()).Inc()
	m.NextCycleDelay.Set(o.Delay.Seconds())
	if o.Kind == Downloaded {
		m.Downloads.Inc()
	}
}

func (m *Metrics) metadataFailure() {
	if m == nil {
		return
	}
	m.MetadataFailures.Inc()
}
