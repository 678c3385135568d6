package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"interview-coach-service/internal/domain"
)

// ProgressCache stores derived progress summaries as JSON with a jittered TTL.
type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewProgressCache(client *redis.Client, ttl time.Duration) *ProgressCache {
	return &ProgressCache{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ProgressCache) GetProgress(ctx context.Context, userID string) (domain.ProgressSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ProgressSummary{}, false, nil
	}
	if err != nil {
		return domain.ProgressSummary{}, false, err
	}
	var sum domain.ProgressSummary
	if err := json.Unmarshal(raw, &sum); err != nil {
		// a corrupt entry is a miss; it will be overwritten by the recompute
		return domain.ProgressSummary{}, false, nil
	}
	return sum, true, nil
}

func (c *ProgressCache) ProgressGeneration(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// PutProgress writes the summary under WATCH on the generation key; it is a
// no-op when an invalidation happened after gen was read.
func (c *ProgressCache) PutProgress(ctx context.Context, userID string, gen int64, summary domain.ProgressSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	genKey := c.genKey(userID)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(userID), payload, c.ttlWithJitter())
			return nil
		})
		return err
	}
	err = c.client.Watch(ctx, txf, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		// invalidated while writing
		return nil
	}
	return err
}

func (c *ProgressCache) InvalidateProgress(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(userID))
		pipe.Incr(ctx, c.genKey(userID))
		return nil
	})
	return err
}

func (c *ProgressCache) key(userID string) string {
	return "interview:progress:" + userID
}

func (c *ProgressCache) genKey(userID string) string {
	return "interview:progress:" + userID + ":gen"
}

func (c *ProgressCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
