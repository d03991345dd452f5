package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues background tasks.
type Client struct {
	client *asynq.Client
}

// WebhookForwarder is the narrow enqueue surface other modules depend on.
type WebhookForwarder interface {
	EnqueueLeadWebhookForward(ctx context.Context, payload LeadWebhookPayload) error
}

// NewClient creates an asynq client from a redis URL.
func NewClient(redisURL string) (*Client, error) {
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return &Client{client: asynq.NewClient(opt)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLeadWebhookForward queues a webhook delivery with retries handled
// by the worker.
func (c *Client) EnqueueLeadWebhookForward(ctx context.Context, payload LeadWebhookPayload) error {
	if c == nil || c.client == nil {
		return nil
	}
	task, err := NewLeadWebhookForwardTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
