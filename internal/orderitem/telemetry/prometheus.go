package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Prometheus records fetch and processing activity.
type Prometheus struct {
	fetchTotal      *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	fetchBytes      prometheus.Histogram
	processTotal    *prometheus.CounterVec
	processDuration prometheus.Histogram
	rowsTotal       *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Remote CSV downloads by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent downloading and storing a remote CSV.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		fetchBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_bytes",
			Help:      "Size of downloaded CSV files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 10, 7),
		}),
		processTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_total",
			Help:      "Processing runs by outcome.",
		}, []string{"outcome"}),
		processDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Time spent reading, cleaning and measuring a stored CSV.",
			Buckets:   prometheus.DefBuckets,
		}),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows seen by processing runs, by kind.",
		}, []string{"kind"}),
	}

	collectors := []prometheus.Collector{
		p.fetchTotal, p.fetchDuration, p.fetchBytes,
		p.processTotal, p.processDuration, p.rowsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Prometheus) ObserveFetch(elapsed time.Duration, size int, err error) {
	if err != nil {
		p.fetchTotal.WithLabelValues(outcomeFailure).Inc()
		return
	}

	p.fetchTotal.WithLabelValues(outcomeSuccess).Inc()
	p.fetchDuration.Observe(elapsed.Seconds())
	p.fetchBytes.Observe(float64(size))
}

func (p *Prometheus) ObserveProcess(elapsed time.Duration, metrics entity.Metrics, err error) {
	if err != nil {
		p.processTotal.WithLabelValues(outcomeFailure).Inc()
		return
	}

	p.processTotal.WithLabelValues(outcomeSuccess).Inc()
	p.processDuration.Observe(elapsed.Seconds())

	p.rowsTotal.WithLabelValues("accepted").Add(float64(metrics.Outcome.Accepted))
	p.rowsTotal.WithLabelValues("blank").Add(float64(metrics.Rows.Blank))
	p.rowsTotal.WithLabelValues("duplicated").Add(float64(metrics.Rows.Duplicated))
	p.rowsTotal.WithLabelValues("sanitised").Add(float64(metrics.Rows.Sanitised))
	p.rowsTotal.WithLabelValues("malformed").Add(float64(metrics.Rows.Malformed))
}
