package db

import (
	"fmt"

	"gorm.io/gorm"

	cartrepo "github.com/yungbote/cart-backend/internal/data/repos/cart"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&cartrepo.CartRow{},
		&cartrepo.CartItemRow{},
	)
}

// EnsureCartIndexes adds indexes gorm tags cannot express portably.
func EnsureCartIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_cart_item_cart_created ON cart_item (cart_id, created_at)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure cart indexes: %w", err)
		}
	}
	return nil
}
