package queue

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"travelaigent.app/agent/common/logger"
	"travelaigent.app/agent/core/config"
)

const readBlock = 5 * time.Second

// Handler processes one trigger. Errors are logged; the message is
// acknowledged either way because the scheduler covers missed work.
type Handler func(ctx context.Context, trigger Trigger) error

// Consumer reads triggers from the stream via a consumer group so
// multiple workers can share one stream without double-processing.
type Consumer struct {
	rdb      *redis.Client
	stream   string
	group    string
	consumer string
	handler  Handler
}

func NewConsumer(rdb *redis.Client, cfg config.RedisConfig, handler Handler) *Consumer {
	return &Consumer{
		rdb:      rdb,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: cfg.Consumer,
		handler:  handler,
	}
}

// Start blocks reading the stream until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "agent.queue.consumer"})

	if err := c.ensureGroup(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "trigger consumer started",
		"stream", c.stream, "group", c.group, "consumer", c.consumer)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			slog.ErrorContext(ctx, "trigger read failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				c.handleMessage(ctx, message)
			}
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, message redis.XMessage) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: logger.Ptr(message.ID)})

	trigger := triggerFromValues(message.Values)
	if err := c.handler(ctx, trigger); err != nil {
		slog.ErrorContext(ctx, "trigger handling failed", "error", err, "source", trigger.Source)
	}

	if err := c.rdb.XAck(ctx, c.stream, c.group, message.ID).Err(); err != nil {
		slog.WarnContext(ctx, "trigger not acknowledged", "error", err)
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, c.stream, c.group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}
