package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cart-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/cart-backend/internal/domain/aggregates"
	"github.com/yungbote/cart-backend/internal/observability"
	"github.com/yungbote/cart-backend/internal/platform/logger"
	"github.com/yungbote/cart-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Cart          services.CartService
	CartAggregate domainagg.CartAggregate
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	verifier, err := services.NewIdentityVerifier(cfg.Auth.Mode, cfg.Auth.JWTSecretKey)
	if err != nil {
		return Services{}, fmt.Errorf("init identity verifier: %w", err)
	}
	if _, basic := verifier.(services.BasicTokenVerifier); basic {
		log.Warn("basic identity gate enabled: tokens are not authenticated and must be bound upstream")
	}

	cartAgg := aggregates.NewCartAggregate(aggregates.CartAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Carts: reposet.Cart,
	})

	return Services{
		Auth:          services.NewAuthService(log, verifier),
		Cart:          services.NewCartService(log, cartAgg, clients.CartEvents, metrics),
		CartAggregate: cartAgg,
	}, nil
}
