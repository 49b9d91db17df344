package services

import (
	"context"
	"errors"
	"time"

	domainagg "github.com/yungbote/cart-backend/internal/domain/aggregates"
	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/observability"
	"github.com/yungbote/cart-backend/internal/platform/ctxutil"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

var ErrUnauthorized = errors.New("unauthorized")

// CartView is what the cart endpoints return for reads and writes.
type CartView struct {
	Cart  *types.Cart `json:"cart"`
	Total int         `json:"total"`
}

type CartService interface {
	Get(ctx context.Context) (CartView, error)
	Update(ctx context.Context, items []types.ItemInput) (CartView, error)
	Clear(ctx context.Context) error
	Checkout(ctx context.Context) (domainagg.CheckoutCartResult, error)
}

type cartService struct {
	log     *logger.Logger
	carts   domainagg.CartAggregate
	events  CartEventPublisher
	metrics *observability.Metrics
}

func NewCartService(log *logger.Logger, carts domainagg.CartAggregate, events CartEventPublisher, metrics *observability.Metrics) CartService {
	if events == nil {
		events = discardEvents{}
	}
	return &cartService{
		log:     log.With("service", "CartService"),
		carts:   carts,
		events:  events,
		metrics: metrics,
	}
}

func (cs *cartService) Get(ctx context.Context) (CartView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return CartView{}, err
	}
	c, err := cs.carts.FindOrCreate(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Cart: c, Total: types.Total(c)}, nil
}

func (cs *cartService) Update(ctx context.Context, items []types.ItemInput) (CartView, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return CartView{}, err
	}
	c, err := cs.carts.Update(ctx, domainagg.UpdateCartInput{UserID: userID, Items: items})
	if err != nil {
		return CartView{}, err
	}
	total := types.Total(c)
	cs.publish(ctx, types.Event{
		Type:      types.EventUpdated,
		UserID:    userID,
		CartID:    c.ID,
		ItemCount: len(c.Items),
		Total:     total,
	})
	return CartView{Cart: c, Total: total}, nil
}

func (cs *cartService) Clear(ctx context.Context) error {
	userID, err := requestUserID(ctx)
	if err != nil {
		return err
	}
	if err := cs.carts.Clear(ctx, userID); err != nil {
		return err
	}
	cs.publish(ctx, types.Event{Type: types.EventCleared, UserID: userID})
	return nil
}

func (cs *cartService) Checkout(ctx context.Context) (domainagg.CheckoutCartResult, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return domainagg.CheckoutCartResult{}, err
	}
	res, err := cs.carts.Checkout(ctx, userID)
	if err != nil {
		return domainagg.CheckoutCartResult{}, err
	}
	cs.log.Info("cart checked out", "user_id", userID, "cart_id", res.CartID, "items", res.ItemCount, "total", res.Total)
	cs.publish(ctx, types.Event{
		Type:      types.EventCheckedOut,
		UserID:    userID,
		CartID:    res.CartID,
		ItemCount: res.ItemCount,
		Total:     res.Total,
	})
	return res, nil
}

// publish runs after the store commit, so a failure is logged and counted
// but never turned into a request error.
func (cs *cartService) publish(ctx context.Context, evt types.Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := cs.events.Publish(ctx, evt); err != nil {
		cs.log.Warn("cart event publish failed", "type", evt.Type, "user_id", evt.UserID, "error", err)
		cs.metrics.IncCartEvent(evt.Type, "failed")
		return
	}
	cs.metrics.IncCartEvent(evt.Type, "published")
}

func requestUserID(ctx context.Context) (string, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == "" {
		return "", ErrUnauthorized
	}
	return rd.UserID, nil
}
