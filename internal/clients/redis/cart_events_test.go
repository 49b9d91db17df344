package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

func TestNoopBus(t *testing.T) {
	bus := NewNoopBus()
	if err := bus.Publish(context.Background(), types.Event{Type: types.EventUpdated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewCartEventBusRequiresAddr(t *testing.T) {
	if _, err := NewCartEventBus(logger.NewNop(), Config{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewCartEventBus(nil, Config{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestCartEventBusRoundTrip(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	bus, err := NewCartEventBus(logger.NewNop(), Config{Addr: addr, Channel: "cart-events-test-" + uuid.NewString()})
	if err != nil {
		t.Fatalf("NewCartEventBus: %v", err)
	}
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan types.Event, 1)
	if err := bus.StartForwarder(ctx, func(evt types.Event) { got <- evt }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	want := types.Event{Type: types.EventCheckedOut, UserID: "u1", CartID: uuid.New(), ItemCount: 2, Total: 7}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case evt := <-got:
		if evt.Type != want.Type || evt.CartID != want.CartID || evt.Total != 7 {
			t.Fatalf("event mismatch: %+v", evt)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for event")
	}
}
