package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/core/config"
)

// Producer publishes triggers onto the stream.
type Producer struct {
	rdb    *redis.Client
	stream string
}

func NewProducer(rdb *redis.Client, cfg config.RedisConfig) *Producer {
	return &Producer{rdb: rdb, stream: cfg.Stream}
}

// Publish appends one trigger and returns the stream message ID.
func (p *Producer) Publish(ctx context.Context, trigger Trigger) (string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "agent.queue.producer"})

	id, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: trigger.values(),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("publishing trigger: %w", err)
	}

	slog.InfoContext(ctx, "search trigger published",
		"message_id", id, "source", trigger.Source, "brief_id", trigger.BriefID)
	return id, nil
}
