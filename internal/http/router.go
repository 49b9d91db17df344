package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/cart-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cart-backend/internal/http/middleware"
	"github.com/yungbote/cart-backend/internal/observability"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	TracingEnabled bool
	ServiceName    string

	AuthMiddleware *httpMW.AuthMiddleware
	CartHandler    *httpH.CartHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "cart-backend"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.Correlate())
	r.Use(httpMW.RequestLogger(cfg.Log))
	if cfg.Metrics != nil {
		r.Use(httpMW.APIMetrics(cfg.Metrics))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Cart
		if cfg.CartHandler != nil {
			protected.GET("/profile/cart", cfg.CartHandler.GetCart)
			protected.PUT("/profile/cart", cfg.CartHandler.UpdateCart)
			protected.DELETE("/profile/cart", cfg.CartHandler.ClearCart)
			protected.POST("/profile/cart/checkout", cfg.CartHandler.Checkout)
		}
	}

	return r
}
