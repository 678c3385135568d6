package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"interview-coach-service/internal/domain"
)

// ProgressCache keeps progress summaries in process with a TTL.
type ProgressCache struct {
	ttl   time.Duration
	clock func() time.Time
	rnd   *rand.Rand

	mu      sync.RWMutex
	entries map[string]cachedSummary
	gens    map[string]int64
}

type cachedSummary struct {
	summary   domain.ProgressSummary
	expiresAt time.Time
}

// NewProgressCache creates a cache; a non-positive ttl keeps entries until invalidated.
func NewProgressCache(ttl time.Duration) *ProgressCache {
	return &ProgressCache{
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]cachedSummary),
		gens:    make(map[string]int64),
	}
}

func (c *ProgressCache) GetProgress(_ context.Context, userID string) (domain.ProgressSummary, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[userID]
	if !ok || (!entry.expiresAt.IsZero() && !entry.expiresAt.After(c.clock())) {
		return domain.ProgressSummary{}, false, nil
	}
	return entry.summary, true, nil
}

func (c *ProgressCache) ProgressGeneration(_ context.Context, userID string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[userID], nil
}

// PutProgress is a no-op when the user was invalidated after gen was read.
func (c *ProgressCache) PutProgress(_ context.Context, userID string, gen int64, summary domain.ProgressSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return nil
	}
	entry := cachedSummary{summary: summary}
	if ttl := c.ttlWithJitter(); ttl > 0 {
		entry.expiresAt = c.clock().Add(ttl)
	}
	c.entries[userID] = entry
	return nil
}

func (c *ProgressCache) InvalidateProgress(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.gens[userID]++
	return nil
}

// ttlWithJitter must be called with c.mu held; rand.Rand is not safe for concurrent use.
func (c *ProgressCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
