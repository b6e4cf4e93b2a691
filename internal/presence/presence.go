package presence

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const onlineKey = "chat:online"

// OnlineSource yields the user ids currently connected to this instance.
// The ws connection registry satisfies it.
type OnlineSource interface {
	Online() []string
}

// Every interval, mirror the in-process registry into the "chat:online" Redis
// set so the storefront admin dashboard can read presence without touching
// this process. The key expires on its own if the service dies.
func Run(ctx context.Context, rdc *redis.Client, src OnlineSource, interval time.Duration) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				syncOnce(ctx, rdc, src, 3*interval)
			}
		}
	}()
}

func syncOnce(ctx context.Context, rdc *redis.Client, src OnlineSource, ttl time.Duration) {
	users := src.Online()
	sort.Strings(users) // registry snapshot order is map order

	// rewrite the whole set in one pipelined round-trip
	pipe := rdc.Pipeline()
	pipe.Del(ctx, onlineKey)
	if len(users) > 0 {
		members := make([]any, len(users))
		for i, u := range users {
			members[i] = u
		}
		pipe.SAdd(ctx, onlineKey, members...)
		pipe.Expire(ctx, onlineKey, ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Error("presence.pipeline", zap.Error(err))
	}
}
