package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// StatusActive is the only status a persisted cart carries. A checked out
// cart is deleted rather than moved to a terminal status.
const StatusActive = "active"

// ErrEmptyCart is returned by checkout when the cart is absent or has no items.
var ErrEmptyCart = errors.New("cart is empty")

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    string     `json:"user_id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []CartItem `json:"items"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID string    `json:"productId"`
	Count     int       `json:"count"`
}

// ItemInput is a line item requested by a caller before it is persisted.
type ItemInput struct {
	ProductID string
	Count     int
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
