package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/platform/dbctx"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

type CartRepo interface {
	FindByUser(dbc dbctx.Context, userID string) (*types.Cart, error)
	LockByUser(dbc dbctx.Context, userID string) (*types.Cart, error)
	Create(dbc dbctx.Context, userID string) (*types.Cart, error)
	ReplaceItems(dbc dbctx.Context, cartID uuid.UUID, items []types.ItemInput) (*types.Cart, error)
	DeleteByUser(dbc dbctx.Context, userID string) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, log *logger.Logger) CartRepo {
	return &cartRepo{db: db, log: log.With("repo", "CartRepo")}
}

const snapshotSelect = "c.id AS cart_id, c.user_id, c.status, c.created_at, c.updated_at, " +
	"ci.id AS item_id, ci.product_id, ci.count, ci.created_at AS item_created_at"

// FindByUser reads the header and items in one statement so both come from
// the same snapshot. Returns nil, nil when the user has no cart.
func (r *cartRepo) FindByUser(dbc dbctx.Context, userID string) (*types.Cart, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	return r.snapshot(dbc, "c.user_id = ?", userID)
}

func (r *cartRepo) findByID(dbc dbctx.Context, id uuid.UUID) (*types.Cart, error) {
	return r.snapshot(dbc, "c.id = ?", id)
}

func (r *cartRepo) snapshot(dbc dbctx.Context, where string, arg interface{}) (*types.Cart, error) {
	var rows []cartSnapshotRow
	if err := dbc.DB(r.db).
		Table("cart AS c").
		Select(snapshotSelect).
		Joins("LEFT JOIN cart_item AS ci ON ci.cart_id = c.id").
		Where(where, arg).
		Order("ci.created_at ASC").
		Order("ci.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return cartFromSnapshot(rows), nil
}

// LockByUser takes a row lock on the user's cart for the rest of dbc.Tx.
func (r *cartRepo) LockByUser(dbc dbctx.Context, userID string) (*types.Cart, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByUser requires dbc.Tx")
	}
	var rows []CartRow
	if err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	if err := dbc.DB(r.db).
		Where("cart_id = ?", row.ID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&row.Items).Error; err != nil {
		return nil, err
	}
	return cartFromRow(&row), nil
}

// Create inserts an empty active cart. A second cart for the same user
// violates idx_cart_user_id and surfaces as the driver's duplicate key error.
func (r *cartRepo) Create(dbc dbctx.Context, userID string) (*types.Cart, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("missing user_id")
	}
	now := time.Now().UTC()
	row := &CartRow{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, err
	}
	return cartFromRow(row), nil
}

// ReplaceItems appends items to an existing cart and returns the re-read
// cart. Existing items are never removed. Runs in dbc.Tx when present,
// otherwise in its own transaction.
func (r *cartRepo) ReplaceItems(dbc dbctx.Context, cartID uuid.UUID, items []types.ItemInput) (*types.Cart, error) {
	if cartID == uuid.Nil {
		return nil, fmt.Errorf("missing cart_id")
	}
	var out *types.Cart
	err := r.inTx(dbc, func(txc dbctx.Context) error {
		var head CartRow
		if err := txc.DB(r.db).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", cartID).
			Take(&head).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		base, err := r.nextItemTime(txc, cartID, now)
		if err != nil {
			return err
		}
		if rows := itemRows(cartID, items, base); len(rows) > 0 {
			if err := txc.DB(r.db).Create(&rows).Error; err != nil {
				return err
			}
		}
		if err := txc.DB(r.db).
			Model(&CartRow{}).
			Where("id = ?", cartID).
			Update("updated_at", now).Error; err != nil {
			return err
		}
		c, err := r.findByID(txc, cartID)
		if err != nil {
			return err
		}
		if c == nil {
			return gorm.ErrRecordNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// nextItemTime keeps appended items ordered after every existing item even
// when the wall clock has not advanced past the previous batch.
func (r *cartRepo) nextItemTime(dbc dbctx.Context, cartID uuid.UUID, now time.Time) (time.Time, error) {
	var last []CartItemRow
	if err := dbc.DB(r.db).
		Where("cart_id = ?", cartID).
		Order("created_at DESC").
		Limit(1).
		Find(&last).Error; err != nil {
		return time.Time{}, err
	}
	if len(last) > 0 && !now.After(last[0].CreatedAt) {
		return last[0].CreatedAt.Add(time.Microsecond), nil
	}
	return now, nil
}

// DeleteByUser removes the user's cart and its items. Deleting an absent
// cart is not an error.
func (r *cartRepo) DeleteByUser(dbc dbctx.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("missing user_id")
	}
	return r.inTx(dbc, func(txc dbctx.Context) error {
		if err := txc.DB(r.db).
			Where("cart_id IN (SELECT id FROM cart WHERE user_id = ?)", userID).
			Delete(&CartItemRow{}).Error; err != nil {
			return err
		}
		return txc.DB(r.db).
			Where("user_id = ?", userID).
			Delete(&CartRow{}).Error
	})
}

func (r *cartRepo) inTx(dbc dbctx.Context, fn func(txc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}
