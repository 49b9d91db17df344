package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/cart-backend/internal/domain/cart"
)

var CartAggregateContract = Contract{
	Name:             "Commerce.CartAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicySnapshot,
	Notes:            "Owns the one-cart-per-user invariant, additive item appends, and checkout emptiness checks.",
}

// CartAggregate owns the lifecycle of a user's cart: absent until first
// touched, active while it exists, absent again after clear or checkout.
//
// Failures are *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodePreconditionFailed (empty checkout), CodeRetryable, CodeInternal.
// CodeConflict from concurrent creation is resolved internally and never returned by FindOrCreate.
type CartAggregate interface {
	Aggregate

	// Find returns the user's cart with its items, or nil when none exists.
	Find(ctx context.Context, userID string) (*cart.Cart, error)

	// FindOrCreate returns the user's cart, creating an empty active one on first use.
	FindOrCreate(ctx context.Context, userID string) (*cart.Cart, error)

	// Update appends the given items to the user's cart. Existing items are kept.
	Update(ctx context.Context, in UpdateCartInput) (*cart.Cart, error)

	// Clear deletes the user's cart and its items. Clearing an absent cart is a no-op.
	Clear(ctx context.Context, userID string) error

	// Checkout deletes a non-empty cart. An absent or empty cart fails with
	// CodePreconditionFailed wrapping cart.ErrEmptyCart and is left untouched.
	Checkout(ctx context.Context, userID string) (CheckoutCartResult, error)
}

type UpdateCartInput struct {
	UserID string
	Items  []cart.ItemInput
}

type CheckoutCartResult struct {
	CartID    uuid.UUID
	ItemCount int
	Total     int
}
