package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/model"
)

// recentCap bounds the cross-user recent list.
const recentCap = 200

// RedisBackend keeps each user's attempts as a JSON list under
// examHistory:{userID}, in append order.
type RedisBackend struct {
	rdb *redis.Client
}

// NewRedisBackend creates a RedisBackend.
func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Append(ctx context.Context, a model.Attempt) error {
	if err := requireUser(a); err != nil {
		return err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	recentKey := config.CacheKey.RecentHistoryKey()
	_, err = b.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, config.CacheKey.HistoryKey(a.UserID), raw)
		pipe.LPush(ctx, recentKey, raw)
		pipe.LTrim(ctx, recentKey, 0, recentCap-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push attempt: %w", err)
	}
	return nil
}

func (b *RedisBackend) Query(ctx context.Context, userID, examID int) ([]model.Attempt, error) {
	items, err := b.rdb.LRange(ctx, config.CacheKey.HistoryKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read attempts: %w", err)
	}

	out := make([]model.Attempt, 0)
	for _, item := range items {
		var a model.Attempt
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decode attempt: %w", err)
		}
		if a.ExamID == examID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (b *RedisBackend) Recent(ctx context.Context, limit int) ([]model.Attempt, error) {
	if limit <= 0 {
		return []model.Attempt{}, nil
	}
	items, err := b.rdb.LRange(ctx, config.CacheKey.RecentHistoryKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent attempts: %w", err)
	}

	out := make([]model.Attempt, 0, len(items))
	for _, item := range items {
		var a model.Attempt
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decode attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}
