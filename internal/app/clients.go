package app

import (
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/cart-backend/internal/clients/redis"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

type Clients struct {
	CartEvents redis.CartEventBus
	Redis      *goredis.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set, cart events are discarded")
		return Clients{CartEvents: redis.NewNoopBus()}, nil
	}
	bus, err := redis.NewCartEventBus(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis cart event bus: %w", err)
	}
	return Clients{CartEvents: bus, Redis: bus.Client()}, nil
}

func (c Clients) Close() error {
	if c.CartEvents == nil {
		return nil
	}
	return c.CartEvents.Close()
}
