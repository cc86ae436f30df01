// Package metrics exposes Prometheus collectors for HTTP traffic and shop
// activity, plus the /metrics handler.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	metricsstore "github.com/dalemusser/slothstore/internal/app/store/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

const namespace = "slothstore"

// Metrics holds the registry and the collectors the app updates. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	cartUpdates     *prometheus.CounterVec
	ordersPlaced    prometheus.Counter
	orderRevenue    prometheus.Counter
	statusChanges   *prometheus.CounterVec
	backorderLines  prometheus.Counter
	inventorySkips  *prometheus.CounterVec
	emailsSent      *prometheus.CounterVec
	checkoutTxnMode *prometheus.CounterVec
}

// New creates a registry with Go and process collectors and the app metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		reg: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		cartUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cart_updates_total",
			Help: "Cart writes by mode (merge or set).",
		}, []string{"mode"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "orders_placed_total",
			Help: "Orders checked out.",
		}),
		orderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_revenue_total",
			Help: "Sum of client-reported totals of placed orders.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_status_changes_total",
			Help: "Order status transitions by target status.",
		}, []string{"to"}),
		backorderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "backorder_lines_total",
			Help: "Checkout lines that drove stock below zero.",
		}),
		inventorySkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "inventory_skips_total",
			Help: "Inventory adjustments skipped because the product or variant was missing.",
		}, []string{"op"}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "emails_total",
			Help: "Outgoing emails by kind and result.",
		}, []string{"kind", "result"}),
		checkoutTxnMode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "checkout_mode_total",
			Help: "Checkouts by write mode (transaction or plain).",
		}, []string{"mode"}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.cartUpdates, m.ordersPlaced, m.orderRevenue, m.statusChanges,
		m.backorderLines, m.inventorySkips, m.emailsSent, m.checkoutTxnMode,
	)
	return m
}

// RegisterStoreGauges adds gauges backed by metricsstore.FetchCounts,
// evaluated on every scrape.
func (m *Metrics) RegisterStoreGauges(db *mongo.Database, timeout time.Duration) {
	if m == nil {
		return
	}
	m.reg.MustRegister(&countsCollector{db: db, timeout: timeout})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware records request count and latency keyed by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) CartUpdated(mode string) {
	if m != nil {
		m.cartUpdates.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) OrderPlaced(total float64, transactional bool) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	if total > 0 {
		m.orderRevenue.Add(total)
	}
	mode := "plain"
	if transactional {
		mode = "transaction"
	}
	m.checkoutTxnMode.WithLabelValues(mode).Inc()
}

func (m *Metrics) StatusChanged(to string) {
	if m != nil {
		m.statusChanges.WithLabelValues(to).Inc()
	}
}

func (m *Metrics) Backorder() {
	if m != nil {
		m.backorderLines.Inc()
	}
}

func (m *Metrics) InventorySkipped(op string) {
	if m != nil {
		m.inventorySkips.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) EmailSent(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.emailsSent.WithLabelValues(kind, result).Inc()
}

type countsCollector struct {
	db      *mongo.Database
	timeout time.Duration
}

var countsDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "store", "documents"),
	"Document counts by kind.",
	[]string{"kind"}, nil,
)

func (c *countsCollector) Describe(ch chan<- *prometheus.Desc) { ch <- countsDesc }

func (c *countsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	counts := metricsstore.FetchCounts(ctx, c.db)
	for kind, v := range map[string]int64{
		"users":            counts.Users,
		"admins":           counts.Admins,
		"products":         counts.Products,
		"active_carts":     counts.ActiveCarts,
		"placed_orders":    counts.PlacedOrders,
		"approved_orders":  counts.ApprovedOrders,
		"cancelled_orders": counts.CancelledOrders,
	} {
		ch <- prometheus.MustNewConstMetric(countsDesc, prometheus.GaugeValue, float64(v), kind)
	}
}
