package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/platform/logger"
)

const DefaultChannel = "cart-events"

type CartEventBus interface {
	Publish(ctx context.Context, evt types.Event) error
	StartForwarder(ctx context.Context, onEvent func(evt types.Event)) error
	Close() error
}

type Config struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type cartEventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewCartEventBus connects to redis and pings it before returning.
func NewCartEventBus(log *logger.Logger, cfg Config) (*cartEventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &cartEventBus{
		log:     log.With("service", "RedisCartEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

// Client exposes the underlying connection for health and metrics probes.
func (b *cartEventBus) Client() *goredis.Client {
	if b == nil {
		return nil
	}
	return b.rdb
}

func (b *cartEventBus) Publish(ctx context.Context, evt types.Event) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis cart event bus not initialized")
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *cartEventBus) StartForwarder(ctx context.Context, onEvent func(evt types.Event)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis cart event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var evt types.Event
				if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
					b.log.Warn("bad redis cart event payload", "error", err)
					continue
				}
				onEvent(evt)
			}
		}
	}()
	return nil
}

func (b *cartEventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

type noopBus struct{}

// NewNoopBus drops every event. Used when no redis address is configured.
func NewNoopBus() CartEventBus { return noopBus{} }

func (noopBus) Publish(context.Context, types.Event) error { return nil }

func (noopBus) StartForwarder(context.Context, func(types.Event)) error { return nil }

func (noopBus) Close() error { return nil }
