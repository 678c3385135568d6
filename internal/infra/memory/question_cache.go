package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/questiongen"
)

// QuestionCache caches question-bank lookups with TTL to avoid repeated DB hits.
// It is itself a questiongen.Source.
type QuestionCache struct {
	source questiongen.Source
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[domain.QuestionType]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.QuestionDescriptor
	expiresAt time.Time
}

func NewQuestionCache(source questiongen.Source, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.QuestionType]cachedQuestions),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context, qt domain.QuestionType) ([]domain.QuestionDescriptor, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[qt]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(string(qt), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[qt]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.source.LoadQuestions(ctx, qt)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[qt] = cachedQuestions{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuestionDescriptor), nil
}

// ttlWithJitter must be called with c.mu held.
func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
