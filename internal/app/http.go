package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cart-backend/internal/http"
	httpH "github.com/yungbote/cart-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cart-backend/internal/http/middleware"
	"github.com/yungbote/cart-backend/internal/observability"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Cart   *httpH.CartHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Cart:   httpH.NewCartHandler(log, services.Cart),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	srv := http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TracingEnabled: observability.OTelEnabled(),
		ServiceName:    serviceName,
		AuthMiddleware: middleware.Auth,
		CartHandler:    handlers.Cart,
		HealthHandler:  handlers.Health,
	})
	srv.ReadHeaderTimeout = cfg.HTTP.ReadHeaderTimeout
	return srv
}
