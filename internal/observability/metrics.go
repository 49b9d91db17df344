package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/cart-backend/internal/platform/envutil"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *GaugeVec

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	cartEvents *CounterVec

	dbStats   *GaugeVec
	redisUp   *GaugeVec
	redisPing *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics registry. It returns nil when
// metrics are disabled, and every Metrics method tolerates a nil receiver.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New returns an unregistered Metrics, mainly for tests.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("cart_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"cart_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGaugeVec("cart_api_inflight_requests", "In-flight API requests.", nil),

		aggregateOps: NewCounterVec("cart_aggregate_operations_total", "Aggregate write operations by aggregate/op/status.", []string{"aggregate", "op", "status"}),
		aggregateLatency: NewHistogramVec(
			"cart_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds, transaction included.",
			[]string{"aggregate", "op"},
			nil,
		),
		aggregateConflicts: NewCounterVec("cart_aggregate_conflicts_total", "Aggregate writes that hit a uniqueness or concurrency conflict.", []string{"aggregate", "op"}),
		aggregateRetries:   NewCounterVec("cart_aggregate_retryable_total", "Aggregate writes that failed with a transient store error.", []string{"aggregate", "op"}),

		cartEvents: NewCounterVec("cart_events_published_total", "Cart change events by type/outcome.", []string{"type", "outcome"}),

		dbStats:   NewGaugeVec("cart_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:   NewGaugeVec("cart_redis_up", "1 when the last redis ping succeeded.", nil),
		redisPing: NewGaugeVec("cart_redis_ping_seconds", "Latency of the last redis ping.", nil),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.cartEvents,
		m.dbStats, m.redisUp, m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

func (m *Metrics) ObserveAggregateOperation(aggregate, op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(aggregate, op, status)
	m.aggregateLatency.Observe(dur.Seconds(), aggregate, op)
}

func (m *Metrics) IncAggregateConflict(aggregate, op string) {
	if m != nil {
		m.aggregateConflicts.Inc(aggregate, op)
	}
}

func (m *Metrics) IncAggregateRetry(aggregate, op string) {
	if m != nil {
		m.aggregateRetries.Inc(aggregate, op)
	}
}

func (m *Metrics) IncCartEvent(eventType, outcome string) {
	if m != nil {
		m.cartEvents.Inc(eventType, outcome)
	}
}

func (m *Metrics) CartEventCount(eventType, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.cartEvents.Value(eventType, outcome)
}

func scrapeInterval() time.Duration {
	secs := envutil.Int("METRICS_SCRAPE_INTERVAL_SECONDS", 10)
	if secs <= 0 {
		secs = 10
	}
	return time.Duration(secs) * time.Second
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the event bus's redis on every scrape interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
