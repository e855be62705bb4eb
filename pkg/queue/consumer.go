// Package queue consumes asynchronous transition requests from a Redis list.
// External systems (assessment providers, bulk importers) push requests onto
// the list instead of calling the HTTP API.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/talentflow/talentflow/pkg/transition"
)

const (
	DefaultQueue = "talentflow:transitions"

	popTimeout   = 1 * time.Second
	errorBackoff = 1 * time.Second
	pingTimeout  = 5 * time.Second
)

// Consumer pops transition requests from a Redis list and feeds them to the
// orchestrator. Malformed payloads are logged and dropped, they never stop the
// consumer.
type Consumer struct {
	queue        string
	orchestrator *transition.Orchestrator

	client redis.UniversalClient
	logger *slog.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Config carries the Redis connection settings for the consumer.
type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

// NewConsumer connects to Redis and returns a consumer ready to start.
func NewConsumer(ctx context.Context, config Config, orchestrator *transition.Orchestrator, logger *slog.Logger) (*Consumer, error) {
	addr := config.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	queue := config.Queue
	if queue == "" {
		queue = DefaultQueue
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	consumer := &Consumer{
		queue:        queue,
		orchestrator: orchestrator,
		client:       client,
		stopCh:       make(chan struct{}),
		logger: logger.With(
			"module", "queue_consumer",
			"queue", queue,
		),
	}

	consumer.logger.InfoContext(ctx, "Connected to Redis", "addr", addr, "db", config.DB)

	return consumer, nil
}

// Start launches the consume loop.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.InfoContext(ctx, "Starting transition queue consumer")

	c.wg.Add(1)

	go c.consume(ctx)
}

func (c *Consumer) consume(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			c.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			err := c.processMessage(ctx)
			if err != nil {
				c.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(errorBackoff)
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context) error {
	result, err := c.client.BLPop(ctx, popTimeout, c.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	message := result[1]

	var req transition.Request
	if err := json.Unmarshal([]byte(message), &req); err != nil {
		c.logger.ErrorContext(ctx, "Dropping malformed transition request", "error", err)

		return nil
	}

	if req.CandidateID == "" || req.TargetStageID == "" {
		c.logger.ErrorContext(ctx, "Dropping transition request without candidate or target stage")

		return nil
	}

	transitionResult, err := c.orchestrator.RequestTransition(ctx, req)
	if err != nil {
		return fmt.Errorf("transition for candidate %s failed: %w", req.CandidateID, err)
	}

	c.logger.InfoContext(ctx, "Processed queued transition",
		"candidate_id", transitionResult.CandidateID,
		"outcome", transitionResult.Outcome,
		"stage_id", transitionResult.StageID,
	)

	return nil
}

// Stop drains the consume loop and closes the Redis connection.
func (c *Consumer) Stop(ctx context.Context) error {
	c.logger.InfoContext(ctx, "Stopping transition queue consumer")

	close(c.stopCh)
	c.wg.Wait()

	if c.client != nil {
		err := c.client.Close()
		if err != nil {
			c.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
