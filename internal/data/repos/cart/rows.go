package cart

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/cart-backend/internal/domain/cart"
)

// CartRow is the persisted shape of a cart header.
type CartRow struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	UserID    string        `gorm:"column:user_id;not null;uniqueIndex:idx_cart_user_id"`
	Status    string        `gorm:"column:status;not null;default:'active'"`
	CreatedAt time.Time     `gorm:"column:created_at;not null"`
	UpdatedAt time.Time     `gorm:"column:updated_at;not null"`
	Items     []CartItemRow `gorm:"foreignKey:CartID;references:ID;constraint:OnDelete:CASCADE"`
}

func (CartRow) TableName() string { return "cart" }

type CartItemRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"type:uuid;column:cart_id;not null;index:idx_cart_item_cart_id"`
	ProductID string    `gorm:"column:product_id;not null"`
	Count     int       `gorm:"column:count;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (CartItemRow) TableName() string { return "cart_item" }

// cartSnapshotRow is one line of the cart LEFT JOIN cart_item read.
type cartSnapshotRow struct {
	CartID        uuid.UUID
	UserID        string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ItemID        uuid.NullUUID
	ProductID     sql.NullString
	Count         sql.NullInt64
	ItemCreatedAt sql.NullTime
}

func cartFromRow(row *CartRow) *types.Cart {
	if row == nil {
		return nil
	}
	out := &types.Cart{
		ID:        row.ID,
		UserID:    row.UserID,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Items:     make([]types.CartItem, 0, len(row.Items)),
	}
	for _, it := range row.Items {
		out.Items = append(out.Items, itemFromRow(it))
	}
	return out
}

func itemFromRow(row CartItemRow) types.CartItem {
	return types.CartItem{
		ID:        row.ID,
		CartID:    row.CartID,
		ProductID: row.ProductID,
		Count:     row.Count,
	}
}

// cartFromSnapshot folds joined rows back into one cart. Rows without an
// item id come from the LEFT JOIN of an empty cart.
func cartFromSnapshot(rows []cartSnapshotRow) *types.Cart {
	if len(rows) == 0 {
		return nil
	}
	head := rows[0]
	out := &types.Cart{
		ID:        head.CartID,
		UserID:    head.UserID,
		Status:    head.Status,
		CreatedAt: head.CreatedAt,
		UpdatedAt: head.UpdatedAt,
		Items:     make([]types.CartItem, 0, len(rows)),
	}
	for _, r := range rows {
		if !r.ItemID.Valid {
			continue
		}
		out.Items = append(out.Items, types.CartItem{
			ID:        r.ItemID.UUID,
			CartID:    r.CartID,
			ProductID: r.ProductID.String,
			Count:     int(r.Count.Int64),
		})
	}
	return out
}

func itemRows(cartID uuid.UUID, items []types.ItemInput, now time.Time) []CartItemRow {
	out := make([]CartItemRow, 0, len(items))
	for i, it := range items {
		out = append(out, CartItemRow{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: it.ProductID,
			Count:     it.Count,
			// keeps request order stable under the (cart_id, created_at) ordering
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	return out
}
