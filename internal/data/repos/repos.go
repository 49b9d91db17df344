package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cart-backend/internal/data/repos/cart"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

type CartRepo = cart.CartRepo

func NewCartRepo(db *gorm.DB, log *logger.Logger) CartRepo { return cart.NewCartRepo(db, log) }
