package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/profile/cart", "200", 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/profile/cart", "200", 30*time.Millisecond)
	m.ObserveAggregateOperation("Commerce.Cart", "Checkout", "precondition_failed", time.Millisecond)
	m.IncAggregateConflict("Commerce.Cart", "FindOrCreate")
	m.IncCartEvent("cart.updated", "published")
	m.ApiInflightInc()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`cart_api_requests_total{method="GET",route="/api/profile/cart",status="200"} 2`,
		`cart_api_request_duration_seconds_count{method="GET",route="/api/profile/cart"} 2`,
		`cart_api_request_duration_seconds_bucket{method="GET",route="/api/profile/cart",le="+Inf"} 2`,
		`cart_aggregate_operations_total{aggregate="Commerce.Cart",op="Checkout",status="precondition_failed"} 1`,
		`cart_aggregate_conflicts_total{aggregate="Commerce.Cart",op="FindOrCreate"} 1`,
		`cart_events_published_total{type="cart.updated",outcome="published"} 1`,
		`cart_api_inflight_requests 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncAggregateRetry("a", "b")
	m.ApiInflightDec()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
	if Init(nil, false) != nil {
		t.Fatalf("disabled Init must return nil")
	}
}
