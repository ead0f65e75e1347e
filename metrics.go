package folio

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// siteMetrics is kept per App so several instances (tests) can coexist.
type siteMetrics struct {
	registry    *prometheus.Registry
	uploads     *prometheus.CounterVec
	uploadBytes *prometheus.CounterVec
	contentOps  *prometheus.CounterVec
}

func newSiteMetrics() *siteMetrics {
	m := &siteMetrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "uploads_total",
			Help:      "Files stored, by asset kind.",
		}, []string{"kind"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "upload_bytes_total",
			Help:      "Bytes received in stored uploads, by asset kind.",
		}, []string{"kind"}),
		contentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "content_writes_total",
			Help:      "Content store mutations, by store and operation.",
		}, []string{"store", "op"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads,
		m.uploadBytes,
		m.contentOps,
	)
	return m
}

func (m *siteMetrics) upload(kind string, size int64) {
	m.uploads.WithLabelValues(kind).Inc()
	if size > 0 {
		m.uploadBytes.WithLabelValues(kind).Add(float64(size))
	}
}

func (m *siteMetrics) write(store, op string) {
	m.contentOps.WithLabelValues(store, op).Inc()
}

func (m *siteMetrics) handler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: m.registry})
}
