package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	local   *memoryBus
	cancel  context.CancelFunc
}

// NewRedisBus publishes through a redis channel and fans received events out
// to local subscribers.
func NewRedisBus(ctx context.Context, log *logger.Logger, addr string, channel string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "supplesafe:session"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	b := &redisBus{
		log:     log.With("service", "RedisSessionBus"),
		rdb:     rdb,
		channel: channel,
		local:   newMemoryBus(),
	}
	if err := b.startForwarder(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return b, nil
}

func (b *redisBus) Publish(ctx context.Context, evt domain.SessionEvent) error {
	raw, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) Subscribe(handler func(domain.SessionEvent)) *Subscription {
	return b.local.Subscribe(handler)
}

func (b *redisBus) startForwarder(parent context.Context) error {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.cancel = cancel

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
				var evt domain.SessionEvent
				if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
					b.log.Warn("bad redis session payload", "error", err)
					continue
				}
				b.local.dispatch(evt)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	_ = b.local.Close()
	return b.rdb.Close()
}
