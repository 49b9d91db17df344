package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartrepo "github.com/yungbote/cart-backend/internal/data/repos/cart"
	"github.com/yungbote/cart-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/platform/dbctx"
)

func TestCartRepo(t *testing.T) {
	db := testutil.SQLite(t)
	repo := cartrepo.NewCartRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	userID := testutil.UserID()

	// FindByUser on a fresh user
	got, err := repo.FindByUser(dbc, userID)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if got != nil {
		t.Fatalf("FindByUser: expected nil cart, got %+v", got)
	}

	// Create
	created, err := repo.Create(dbc, userID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil || created.UserID != userID || created.Status != types.StatusActive {
		t.Fatalf("Create: unexpected cart %+v", created)
	}
	if len(created.Items) != 0 {
		t.Fatalf("Create: expected no items, got %d", len(created.Items))
	}

	// Create again for the same user violates the unique index
	if _, err := repo.Create(dbc, userID); err == nil {
		t.Fatalf("Create duplicate: expected error")
	}

	// ReplaceItems appends
	updated, err := repo.ReplaceItems(dbc, created.ID, []types.ItemInput{
		{ProductID: "p1", Count: 2},
		{ProductID: "p2", Count: 3},
	})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("ReplaceItems: expected 2 items, got %d", len(updated.Items))
	}
	if updated.Items[0].ProductID != "p1" || updated.Items[1].ProductID != "p2" {
		t.Fatalf("ReplaceItems: unexpected order %+v", updated.Items)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Fatalf("ReplaceItems: updated_at went backwards")
	}

	updated, err = repo.ReplaceItems(dbc, created.ID, []types.ItemInput{{ProductID: "p1", Count: 1}})
	if err != nil {
		t.Fatalf("ReplaceItems second: %v", err)
	}
	if len(updated.Items) != 3 || types.Total(updated) != 6 {
		t.Fatalf("ReplaceItems second: items=%d total=%d", len(updated.Items), types.Total(updated))
	}

	// FindByUser sees the same snapshot
	found, err := repo.FindByUser(dbc, userID)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if found == nil || found.ID != created.ID || len(found.Items) != 3 {
		t.Fatalf("FindByUser: unexpected cart %+v", found)
	}

	// DeleteByUser removes cart and items
	if err := repo.DeleteByUser(dbc, userID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	if found, err := repo.FindByUser(dbc, userID); err != nil || found != nil {
		t.Fatalf("FindByUser after delete: cart=%+v err=%v", found, err)
	}
	var orphans int64
	if err := db.Model(&cartrepo.CartItemRow{}).Where("cart_id = ?", created.ID).Count(&orphans).Error; err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("DeleteByUser left %d items", orphans)
	}

	// DeleteByUser on an absent cart is a no-op
	if err := repo.DeleteByUser(dbc, userID); err != nil {
		t.Fatalf("DeleteByUser absent: %v", err)
	}
}

func TestCartRepo_ReplaceItemsMissingCart(t *testing.T) {
	db := testutil.SQLite(t)
	repo := cartrepo.NewCartRepo(db, testutil.Logger(t))

	_, err := repo.ReplaceItems(dbctx.Context{Ctx: context.Background()}, uuid.New(), []types.ItemInput{{ProductID: "p1", Count: 1}})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("ReplaceItems missing cart: expected ErrRecordNotFound, got %v", err)
	}
}

func TestCartRepo_CascadeOnCartDelete(t *testing.T) {
	db := testutil.SQLite(t)
	repo := cartrepo.NewCartRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	userID := testutil.UserID()

	created, err := repo.Create(dbc, userID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.ReplaceItems(dbc, created.ID, []types.ItemInput{{ProductID: "p1", Count: 1}}); err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}

	// deleting only the header must take the items with it
	if err := db.Where("id = ?", created.ID).Delete(&cartrepo.CartRow{}).Error; err != nil {
		t.Fatalf("delete header: %v", err)
	}
	var n int64
	if err := db.Model(&cartrepo.CartItemRow{}).Where("cart_id = ?", created.ID).Count(&n).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if n != 0 {
		t.Fatalf("cascade: expected 0 items, got %d", n)
	}
}

func TestCartRepo_LockByUserRequiresTx(t *testing.T) {
	db := testutil.SQLite(t)
	repo := cartrepo.NewCartRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	userID := testutil.UserID()

	if _, err := repo.LockByUser(dbc, userID); err == nil {
		t.Fatalf("LockByUser without tx: expected error")
	}
	if _, err := repo.Create(dbc, userID); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.LockByUser(dbctx.Context{Ctx: context.Background(), Tx: tx}, userID)
		if err != nil {
			return err
		}
		if locked == nil || locked.UserID != userID {
			t.Fatalf("LockByUser: unexpected cart %+v", locked)
		}
		absent, err := repo.LockByUser(dbctx.Context{Ctx: context.Background(), Tx: tx}, testutil.UserID())
		if err != nil {
			return err
		}
		if absent != nil {
			t.Fatalf("LockByUser absent: expected nil, got %+v", absent)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
}

func TestCartRepo_Postgres(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := cartrepo.NewCartRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	userID := testutil.UserID()

	created, err := repo.Create(dbc, userID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	locked, err := repo.LockByUser(dbc, userID)
	if err != nil {
		t.Fatalf("LockByUser: %v", err)
	}
	if locked == nil || locked.ID != created.ID {
		t.Fatalf("LockByUser: unexpected cart %+v", locked)
	}
	updated, err := repo.ReplaceItems(dbc, created.ID, []types.ItemInput{{ProductID: "p1", Count: 4}})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	if types.Total(updated) != 4 {
		t.Fatalf("ReplaceItems: total=%d", types.Total(updated))
	}
	if err := repo.DeleteByUser(dbc, userID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
}
