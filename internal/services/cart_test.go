package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/cart-backend/internal/data/aggregates"
	"github.com/yungbote/cart-backend/internal/data/repos"
	"github.com/yungbote/cart-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/cart-backend/internal/domain/aggregates"
	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/observability"
	"github.com/yungbote/cart-backend/internal/platform/ctxutil"
)

type recordingBus struct {
	mu     sync.Mutex
	events []types.Event
	err    error
}

func (b *recordingBus) Publish(_ context.Context, evt types.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, evt)
	return nil
}

func (b *recordingBus) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

func newCartService(t *testing.T, bus CartEventPublisher, m *observability.Metrics) CartService {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	agg := aggregates.NewCartAggregate(aggregates.CartAggregateDeps{
		Base:  aggregates.BaseDeps{DB: db, Log: log},
		Carts: repos.NewCartRepo(db, log),
	})
	return NewCartService(log, agg, bus, m)
}

func userCtx(userID string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

func TestCartServiceRequiresIdentity(t *testing.T) {
	svc := newCartService(t, nil, nil)
	ctx := context.Background()
	if _, err := svc.Get(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Get: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Update(ctx, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Update: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.Clear(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Clear: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Checkout(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Checkout: expected ErrUnauthorized, got %v", err)
	}
}

func TestCartServiceFlowPublishesEvents(t *testing.T) {
	bus := &recordingBus{}
	m := observability.New()
	svc := newCartService(t, bus, m)
	ctx := userCtx(testutil.UserID())

	view, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Cart == nil || view.Total != 0 || len(view.Cart.Items) != 0 {
		t.Fatalf("Get: unexpected view %+v", view)
	}
	firstID := view.Cart.ID

	if view, err = svc.Update(ctx, []types.ItemInput{{ProductID: "p1", Count: 2}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if view.Total != 2 {
		t.Fatalf("Update: total=%d want 2", view.Total)
	}
	if view, err = svc.Update(ctx, []types.ItemInput{{ProductID: "p2", Count: 3}}); err != nil {
		t.Fatalf("Update second: %v", err)
	}
	if view.Total != 5 || len(view.Cart.Items) != 2 {
		t.Fatalf("Update second: total=%d items=%d", view.Total, len(view.Cart.Items))
	}

	res, err := svc.Checkout(ctx)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.CartID != firstID || res.Total != 5 || res.ItemCount != 2 {
		t.Fatalf("Checkout: unexpected result %+v", res)
	}

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got := bus.eventTypes()
	want := []string{types.EventUpdated, types.EventUpdated, types.EventCheckedOut, types.EventCleared}
	if len(got) != len(want) {
		t.Fatalf("events: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events: got %v want %v", got, want)
		}
	}
	if bus.events[2].CartID != firstID || bus.events[2].OccurredAt.IsZero() {
		t.Fatalf("checkout event: %+v", bus.events[2])
	}
	if v := m.CartEventCount(types.EventUpdated, "published"); v != 2 {
		t.Fatalf("published updated events: %v", v)
	}
}

func TestCartServiceCheckoutEmptyPublishesNothing(t *testing.T) {
	bus := &recordingBus{}
	svc := newCartService(t, bus, nil)
	ctx := userCtx(testutil.UserID())

	if _, err := svc.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	}
	_, err := svc.Checkout(ctx)
	if !domainagg.IsCode(err, domainagg.CodePreconditionFailed) || !errors.Is(err, types.ErrEmptyCart) {
		t.Fatalf("Checkout: expected empty cart error, got %v", err)
	}
	if n := len(bus.eventTypes()); n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
}

func TestCartServicePublishFailureDoesNotFailRequest(t *testing.T) {
	bus := &recordingBus{err: errors.New("redis down")}
	m := observability.New()
	svc := newCartService(t, bus, m)
	ctx := userCtx(testutil.UserID())

	view, err := svc.Update(ctx, []types.ItemInput{{ProductID: "p1", Count: 1}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if view.Total != 1 {
		t.Fatalf("Update: total=%d", view.Total)
	}
	if v := m.CartEventCount(types.EventUpdated, "failed"); v != 1 {
		t.Fatalf("failed events: %v", v)
	}
}
