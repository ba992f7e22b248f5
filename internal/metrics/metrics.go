// Package metrics expone contadores Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados usados como label "result".
const (
	ResultSuccess   = "success"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// AuthRecorder es la interfaz que usan los servicios de autenticacion.
type AuthRecorder interface {
	RecordSignup(result string)
	RecordSignin(result string)
	RecordTokenRejected(reason string)
}

// Collector implementa AuthRecorder sobre un registro Prometheus.
type Collector struct {
	signups         *prometheus.CounterVec
	signins         *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// NewCollector crea el Collector y registra sus metricas en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anniversary_auth_signups_total",
			Help: "Signup attempts by result.",
		}, []string{"result"}),
		signins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anniversary_auth_signins_total",
			Help: "Signin attempts by result.",
		}, []string{"result"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anniversary_auth_token_rejections_total",
			Help: "Rejected bearer credentials by reason.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anniversary_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "anniversary_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.signups,
		c.signins,
		c.tokenRejections,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) RecordSignup(result string) {
	c.signups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSignin(result string) {
	c.signins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTokenRejected(reason string) {
	c.tokenRejections.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest registra una request completada.
func (c *Collector) RecordHTTPRequest(method, route string, status int, latency time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// Handler devuelve el handler HTTP para /metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop descarta todas las metricas.
type Nop struct{}

func (Nop) RecordSignup(string)        {}
func (Nop) RecordSignin(string)        {}
func (Nop) RecordTokenRejected(string) {}
