package crosstab

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/bankfront/internal/client/events"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/redis/go-redis/v9"
)

// RedisSource listens on the channel storage.RedisStore publishes to and
// skips messages stamped with its own origin.
type RedisSource struct {
	rdb     redis.UniversalClient
	channel string
	origin  string
	logger  logging.Logger
}

func NewRedisSource(rdb redis.UniversalClient, channel, origin string, logger logging.Logger) *RedisSource {
	return &RedisSource{rdb: rdb, channel: channel, origin: origin, logger: logger}
}

func (r *RedisSource) Run(ctx context.Context, emit func(events.Event)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if ev, ok := r.decode(ctx, msg.Payload); ok {
				emit(ev)
			}
		}
	}
}

func (r *RedisSource) decode(ctx context.Context, payload string) (events.Event, bool) {
	var cm storage.ChangeMessage
	if err := json.Unmarshal([]byte(payload), &cm); err != nil {
		r.logger.Warn(ctx, "malformed storage change message", "error", err)
		return events.Event{}, false
	}
	if cm.Origin == r.origin {
		return events.Event{}, false
	}
	return events.Event{Kind: events.StorageChanged, Keys: cm.Keys, Origin: cm.Origin}, true
}
