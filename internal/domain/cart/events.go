package cart

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventUpdated    = "cart.updated"
	EventCleared    = "cart.cleared"
	EventCheckedOut = "cart.checked_out"
)

// Event describes a committed cart change. It is published after the
// write transaction commits, never from inside it.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	CartID     uuid.UUID `json:"cart_id,omitempty"`
	ItemCount  int       `json:"item_count"`
	Total      int       `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}
