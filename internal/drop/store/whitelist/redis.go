package whitelist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"curio/internal/drop/models"
)

const setKey = "curio:whitelist"

// Redis keeps the whitelist in a Redis set so multiple replicas share one
// view of mint eligibility.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed whitelist.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (w *Redis) Set(ctx context.Context, account models.Account, approved bool) error {
	var err error
	if approved {
		err = w.client.SAdd(ctx, setKey, account.String()).Err()
	} else {
		err = w.client.SRem(ctx, setKey, account.String()).Err()
	}
	if err != nil {
		return fmt.Errorf("update whitelist: %w", err)
	}
	return nil
}

func (w *Redis) Contains(ctx context.Context, account models.Account) (bool, error) {
	ok, err := w.client.SIsMember(ctx, setKey, account.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check whitelist: %w", err)
	}
	return ok, nil
}
