// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "cochera"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	entradas = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entradas_registradas_total",
		Help:      "Vehicles checked in.",
	})

	salidas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "salidas_registradas_total",
		Help:      "Vehicles checked out, by path (cobro | autorizada).",
	}, []string{"tipo"})

	movimientos = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "movimientos_monto_total",
		Help:      "Sum of cash movements by type and payment method.",
	}, []string{"tipo", "metodo"})

	penalidadFallos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "penalidad_fallos_total",
		Help:      "Penalty calculations that failed and fell back to zero.",
	})

	turnosCerrados = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "turnos_cerrados_total",
		Help:      "Shifts closed.",
	})

	jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_total",
		Help:      "Background jobs by type and outcome.",
	}, []string{"tipo", "resultado"})
)

func EntradaRegistrada() { entradas.Inc() }

func SalidaRegistrada(tipo string) { salidas.WithLabelValues(tipo).Inc() }

// Movimiento adds a ledger amount; the counter is in currency units.
func Movimiento(tipo, metodo string, monto decimal.Decimal) {
	movimientos.WithLabelValues(tipo, metodo).Add(monto.InexactFloat64())
}

func PenalidadFallida() { penalidadFallos.Inc() }

func TurnoCerrado() { turnosCerrados.Inc() }

func Job(tipo, resultado string) { jobs.WithLabelValues(tipo, resultado).Inc() }

// Middleware records request count and latency per matched route. Unmatched
// routes share a single label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) }
}
