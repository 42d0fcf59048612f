// Package monitoring holds the Prometheus collectors of the order book.
package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/internal/event"
)

const namespace = "orderbook"

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	OrdersMatched *prometheus.CounterVec
	TradesTotal   prometheus.Counter
	TradedVolume  prometheus.Counter
	Notional      prometheus.Counter

	RestingOrders *prometheus.GaugeVec
	BestPrice     *prometheus.GaugeVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		OrdersMatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_submitted_total",
				Help:      "Orders accepted by the matching engine",
			},
			[]string{"side", "outcome"},
		),
		TradesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trades_total",
				Help:      "Total executed trades",
			},
		),
		TradedVolume: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traded_quantity_total",
				Help:      "Sum of executed trade quantities",
			},
		),
		Notional: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traded_notional_total",
				Help:      "Sum of price times quantity over executed trades",
			},
		),
		RestingOrders: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "resting_orders",
				Help:      "Active orders in the book",
			},
			[]string{"side"},
		),
		BestPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "best_price",
				Help:      "Best bid and ask, zero when the side is empty",
			},
			[]string{"side"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.OrdersMatched,
		m.TradesTotal,
		m.TradedVolume,
		m.Notional,
		m.RestingOrders,
		m.BestPrice,
	)
	return m
}

// Registry exposes the registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// HandleOrderMatched is subscribed to event.TopicOrderMatched.
func (m *Metrics) HandleOrderMatched(_ context.Context, payload any) {
	matched, ok := payload.(event.OrderMatched)
	if !ok {
		return
	}

	m.OrdersMatched.WithLabelValues(string(matched.Order.Side), outcome(matched.Order)).Inc()
}

// HandleTradeExecuted is subscribed to event.TopicTradeExecuted.
func (m *Metrics) HandleTradeExecuted(_ context.Context, payload any) {
	trade, ok := payload.(*orderv1.Trade)
	if !ok {
		return
	}

	m.TradesTotal.Inc()
	m.TradedVolume.Add(float64(trade.Quantity))
	m.Notional.Add(trade.Notional().InexactFloat64())
}

// HandleBookUpdated is subscribed to event.TopicBookUpdated.
func (m *Metrics) HandleBookUpdated(_ context.Context, payload any) {
	book, ok := payload.(*orderv1.Book)
	if !ok {
		return
	}

	m.RestingOrders.WithLabelValues(string(orderv1.SideBid)).Set(float64(len(book.Bids)))
	m.RestingOrders.WithLabelValues(string(orderv1.SideAsk)).Set(float64(len(book.Asks)))

	m.BestPrice.WithLabelValues(string(orderv1.SideBid)).Set(price(book.BestBid()))
	m.BestPrice.WithLabelValues(string(orderv1.SideAsk)).Set(price(book.BestAsk()))
}

func outcome(o *orderv1.Order) string {
	switch {
	case o.IsFilled():
		return "filled"
	case o.Quantity < o.OriginalQuantity:
		return "partial"
	default:
		return "resting"
	}
}

func price(o *orderv1.Order) float64 {
	if o == nil {
		return 0
	}
	return o.Price.InexactFloat64()
}
