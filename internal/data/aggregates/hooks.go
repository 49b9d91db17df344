package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/cart-backend/internal/observability"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports aggregate operations as metrics. A nil
// metrics handle (metrics disabled) yields no-op hooks.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	agg, op := splitOp(name)
	h.metrics.ObserveAggregateOperation(agg, op, strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string) {
	agg, op := splitOp(name)
	h.metrics.IncAggregateConflict(agg, op)
}

func (h *observabilityHooks) IncRetry(name string) {
	agg, op := splitOp(name)
	h.metrics.IncAggregateRetry(agg, op)
}

// splitOp turns "Commerce.Cart.Checkout" into ("Commerce.Cart", "Checkout").
func splitOp(name string) (string, string) {
	name = strings.TrimSpace(name)
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return "unknown", name
	}
	return name[:i], name[i+1:]
}
