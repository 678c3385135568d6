package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/questiongen"
)

// QuestionCache caches the question bank in Redis (hash per question type) and
// falls back to the source on a miss.
// Questions are stored as: HSET interview:questions:{type} {questionID} {question json}
type QuestionCache struct {
	client *redis.Client
	source questiongen.Source
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, source questiongen.Source, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context, qt domain.QuestionType) ([]domain.QuestionDescriptor, error) {
	key := c.key(qt)
	if cached, ok := c.fromCache(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(string(qt), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := c.fromCache(ctx, key); ok {
			return cached, nil
		}

		questions, err := c.source.LoadQuestions(ctx, qt)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return questions, nil
		}

		pipe := c.client.Pipeline()
		for _, q := range questions {
			payload, err := json.Marshal(q)
			if err != nil {
				continue
			}
			pipe.HSet(ctx, key, q.ID, payload)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionDescriptor), nil
}

// fromCache treats any Redis or decoding failure as a miss.
func (c *QuestionCache) fromCache(ctx context.Context, key string) ([]domain.QuestionDescriptor, bool) {
	entries, err := c.client.HGetAll(ctx, key).Result()
	if err != nil || len(entries) == 0 {
		return nil, false
	}
	out := make([]domain.QuestionDescriptor, 0, len(entries))
	for _, raw := range entries {
		var q domain.QuestionDescriptor
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, false
		}
		out = append(out, q)
	}
	// hash order is unspecified
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, true
}

func (c *QuestionCache) key(qt domain.QuestionType) string {
	return "interview:questions:" + string(qt)
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
