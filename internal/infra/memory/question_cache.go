package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fakeout-service/internal/content"
	"fakeout-service/internal/domain"
)

// topicFetchSize is how many questions a cache fill pulls per topic; requests
// are then served from that batch.
const topicFetchSize = 500

// QuestionCache caches per-topic question batches with TTL to avoid hitting
// the backing store on every game start.
type QuestionCache struct {
	source content.TopicSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedTopic
}

type cachedTopic struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(source content.TopicSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTopic),
	}
}

func (c *QuestionCache) ListTopics(ctx context.Context) ([]string, error) {
	return c.source.ListTopics(ctx)
}

func (c *QuestionCache) QuestionsForTopic(ctx context.Context, count int, topic string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[topic]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return clip(entry.questions, count), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(topic, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[topic]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.source.QuestionsForTopic(ctx, topicFetchSize, topic)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[topic] = cachedTopic{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return clip(result.([]domain.Question), count), nil
}

func clip(questions []domain.Question, count int) []domain.Question {
	if count > len(questions) {
		count = len(questions)
	}
	return append([]domain.Question{}, questions[:count]...)
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
