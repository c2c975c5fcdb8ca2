package content

import (
	"context"
	"fmt"
	"math/rand"

	"fakeout-service/internal/domain"
)

// TopicSource fetches topic names and per-topic question batches from a
// backing store (Postgres, a Redis cache in front of it, or a static map).
type TopicSource interface {
	ListTopics(ctx context.Context) ([]string, error)
	// QuestionsForTopic returns at most count questions; fewer if the topic
	// has fewer available. It never errors on a short result.
	QuestionsForTopic(ctx context.Context, count int, topic string) ([]domain.Question, error)
}

// Provider assembles game question sets from a TopicSource.
type Provider struct {
	source TopicSource
}

func NewProvider(source TopicSource) *Provider {
	return &Provider{source: source}
}

func (p *Provider) ListTopics(ctx context.Context) ([]string, error) {
	return p.source.ListTopics(ctx)
}

func (p *Provider) QuestionsForTopic(ctx context.Context, count int, topic string) ([]domain.Question, error) {
	return p.source.QuestionsForTopic(ctx, count, topic)
}

// QuestionsForTopics splits total evenly across the topics, the first
// total%len(topics) topics getting one extra, then returns the combined
// batch in shuffled order so topics are mixed.
func (p *Provider) QuestionsForTopics(ctx context.Context, total int, topics []string) ([]domain.Question, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("no topics given")
	}

	perTopic := total / len(topics)
	remainder := total % len(topics)

	var combined []domain.Question
	for _, topic := range topics {
		count := perTopic
		if remainder > 0 {
			count++
			remainder--
		}
		questions, err := p.source.QuestionsForTopic(ctx, count, topic)
		if err != nil {
			return nil, fmt.Errorf("questions for topic %q: %w", topic, err)
		}
		combined = append(combined, questions...)
	}

	rand.Shuffle(len(combined), func(i, j int) {
		combined[i], combined[j] = combined[j], combined[i]
	})
	return combined, nil
}
