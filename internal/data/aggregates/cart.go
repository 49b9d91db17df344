package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/cart-backend/internal/data/repos"
	domainagg "github.com/yungbote/cart-backend/internal/domain/aggregates"
	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/platform/dbctx"
)

// findOrCreateAttempts bounds the create/re-read cycle when concurrent
// requests race to create and delete the same user's cart.
const findOrCreateAttempts = 3

type CartAggregateDeps struct {
	Base  BaseDeps
	Carts repos.CartRepo
}

type cartAggregate struct {
	deps CartAggregateDeps
}

func NewCartAggregate(deps CartAggregateDeps) domainagg.CartAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "CartAggregate")
	return &cartAggregate{deps: deps}
}

func (a *cartAggregate) Contract() domainagg.Contract {
	return domainagg.CartAggregateContract
}

func (a *cartAggregate) Find(ctx context.Context, userID string) (*types.Cart, error) {
	const op = "Commerce.Cart.Find"
	userID, err := a.precheck(op, userID)
	if err != nil {
		return nil, err
	}
	c, err := a.deps.Carts.FindByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, MapError(op, err)
	}
	return c, nil
}

func (a *cartAggregate) FindOrCreate(ctx context.Context, userID string) (*types.Cart, error) {
	const op = "Commerce.Cart.FindOrCreate"
	userID, err := a.precheck(op, userID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= findOrCreateAttempts; attempt++ {
		var out *types.Cart
		err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
			c, err := a.deps.Carts.FindByUser(dbc, userID)
			if err != nil {
				return err
			}
			if c == nil {
				if c, err = a.deps.Carts.Create(dbc, userID); err != nil {
					return err
				}
			}
			out = c
			return nil
		})
		if err == nil {
			return out, nil
		}
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			return nil, err
		}

		// Lost the insert race; the winner's row is committed by now.
		a.deps.Base.Log.Debug("cart create conflicted, re-reading", "user_id", userID, "attempt", attempt)
		c, rerr := a.deps.Carts.FindByUser(dbctx.Context{Ctx: ctx}, userID)
		if rerr != nil {
			return nil, MapError(op, rerr)
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, MapError(op, RetryableError("cart kept changing during find-or-create"))
}

func (a *cartAggregate) Update(ctx context.Context, in domainagg.UpdateCartInput) (*types.Cart, error) {
	const op = "Commerce.Cart.Update"
	userID, err := a.precheck(op, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := validateItems(in.Items); err != nil {
		return nil, MapError(op, err)
	}

	current, err := a.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out *types.Cart
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		updated, err := a.deps.Carts.ReplaceItems(dbc, current.ID, in.Items)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *cartAggregate) Clear(ctx context.Context, userID string) error {
	const op = "Commerce.Cart.Clear"
	userID, err := a.precheck(op, userID)
	if err != nil {
		return err
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		return a.deps.Carts.DeleteByUser(dbc, userID)
	})
}

// Checkout locks the cart row so the emptiness check and the delete see
// the same items. Appends from a concurrent Update wait on the lock.
func (a *cartAggregate) Checkout(ctx context.Context, userID string) (domainagg.CheckoutCartResult, error) {
	const op = "Commerce.Cart.Checkout"
	var out domainagg.CheckoutCartResult
	userID, err := a.precheck(op, userID)
	if err != nil {
		return out, err
	}
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		c, err := a.deps.Carts.LockByUser(dbc, userID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return types.ErrEmptyCart
		}
		if err := a.deps.Carts.DeleteByUser(dbc, userID); err != nil {
			return err
		}
		out = domainagg.CheckoutCartResult{
			CartID:    c.ID,
			ItemCount: len(c.Items),
			Total:     types.Total(c),
		}
		return nil
	})
	if err != nil {
		return domainagg.CheckoutCartResult{}, err
	}
	return out, nil
}

func validateItems(items []types.ItemInput) error {
	for i, it := range items {
		switch {
		case it.Count < 0:
			return ValidationError(fmt.Sprintf("items[%d].count must not be negative", i))
		case it.Count > types.MaxItemCount:
			return ValidationError(fmt.Sprintf("items[%d].count must not exceed %d", i, types.MaxItemCount))
		}
	}
	return nil
}

func (a *cartAggregate) precheck(op, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if a.deps.Carts == nil {
		return "", domainagg.NewError(domainagg.CodeInternal, op, "cart aggregate repo not configured", nil)
	}
	return userID, nil
}
