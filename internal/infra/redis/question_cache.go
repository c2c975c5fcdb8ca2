package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"fakeout-service/internal/content"
	"fakeout-service/internal/domain"
)

// topicFetchSize is how many questions a cache fill pulls per topic.
const topicFetchSize = 500

// QuestionCache caches per-topic question batches in Redis (one JSON value
// per topic) and falls back to the source on a miss. Shared across processes,
// unlike the in-memory cache.
type QuestionCache struct {
	client *redis.Client
	source content.TopicSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, source content.TopicSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) ListTopics(ctx context.Context) ([]string, error) {
	return c.source.ListTopics(ctx)
}

func (c *QuestionCache) QuestionsForTopic(ctx context.Context, count int, topic string) ([]domain.Question, error) {
	key := c.key(topic)

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		if questions, ok := decodeQuestions(cached); ok {
			return clip(questions, count), nil
		}
	}

	result, err, _ := c.sf.Do(topic, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
			if questions, ok := decodeQuestions(cached); ok {
				return questions, nil
			}
		}

		questions, err := c.source.QuestionsForTopic(ctx, topicFetchSize, topic)
		if err != nil {
			return nil, err
		}

		if encoded, err := json.Marshal(wireQuestions(questions)); err == nil {
			_ = c.client.Set(ctx, key, encoded, c.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return clip(result.([]domain.Question), count), nil
}

func (c *QuestionCache) key(topic string) string {
	return "content:topic:" + topic + ":questions"
}

// wireQuestion carries the correct answer, which the public JSON shape of
// domain.Question deliberately omits.
type wireQuestion struct {
	ID            int64  `json:"id"`
	Topic         string `json:"topic"`
	Text          string `json:"text"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

func wireQuestions(questions []domain.Question) []wireQuestion {
	out := make([]wireQuestion, len(questions))
	for i, q := range questions {
		out[i] = wireQuestion(q)
	}
	return out
}

func decodeQuestions(raw []byte) ([]domain.Question, bool) {
	var wire []wireQuestion
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, false
	}
	questions := make([]domain.Question, len(wire))
	for i, q := range wire {
		questions[i] = domain.Question(q)
	}
	return questions, true
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
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
