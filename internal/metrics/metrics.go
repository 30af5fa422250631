// Package metrics exports editing activity as Prometheus metrics.
//
// A Collector subscribes to an engine's event bus for operations and
// undos, and observes layouts through engine.WithLayoutObserver. Each
// Collector owns its registry so several can coexist in one process.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/mutate"
	"github.com/dshills/mindstorm/internal/event"
)

const namespace = "mindstorm"

// Collector records mindstorm metrics.
type Collector struct {
	registry *prometheus.Registry

	operations    *prometheus.CounterVec
	undos         prometheus.Counter
	layoutSeconds prometheus.Histogram
	nodes         prometheus.Gauge

	bus  event.Bus
	subs []*event.Subscription
}

// New creates a Collector registering into reg, or into a fresh registry
// when reg is nil.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Mutations applied, by operation kind.",
		}, []string{"kind"}),
		undos: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undo_total",
			Help:      "Operations undone.",
		}),
		layoutSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_seconds",
			Help:      "Time spent computing layouts.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes placed by the most recent layout.",
		}),
	}
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Attach subscribes the collector to bus. Handlers run last so they see
// only operations that every other subscriber accepted.
func (c *Collector) Attach(bus event.Bus) error {
	if c.bus != nil {
		return errors.New("metrics: collector already attached")
	}
	ops, err := bus.SubscribeFunc(event.TopicOperations, c.onOperation, event.WithPriority(event.PriorityLow))
	if err != nil {
		return fmt.Errorf("metrics: subscribe operations: %w", err)
	}
	undo, err := bus.SubscribeFunc(event.TopicUndo, c.onUndo, event.WithPriority(event.PriorityLow))
	if err != nil {
		_ = bus.Unsubscribe(ops)
		return fmt.Errorf("metrics: subscribe undo: %w", err)
	}
	c.bus = bus
	c.subs = []*event.Subscription{ops, undo}
	return nil
}

// Detach removes the collector's subscriptions.
func (c *Collector) Detach() {
	if c.bus == nil {
		return
	}
	for _, sub := range c.subs {
		_ = c.bus.Unsubscribe(sub)
	}
	c.bus, c.subs = nil, nil
}

func (c *Collector) onOperation(_ context.Context, ev any) error {
	if op, ok := event.PayloadOf[mutate.Operation](ev); ok {
		c.operations.WithLabelValues(op.Kind.String()).Inc()
	}
	return nil
}

func (c *Collector) onUndo(context.Context, any) error {
	c.undos.Inc()
	return nil
}

// ObserveLayout records a layout. Its signature matches
// engine.LayoutObserver.
func (c *Collector) ObserveLayout(res *layout.Result, elapsed time.Duration) {
	c.layoutSeconds.Observe(elapsed.Seconds())
	c.nodes.Set(float64(res.Len()))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: listen %s: %w", addr, err)
	}
	return c.serve(ctx, ln)
}

func (c *Collector) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
