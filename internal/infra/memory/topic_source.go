package memory

import (
	"context"
	"sort"

	"fakeout-service/internal/domain"
)

// StaticTopicSource serves questions from an in-memory map, keyed by topic.
// Useful for tests and for running the server without a database.
type StaticTopicSource struct {
	topics    []string
	questions map[string][]domain.Question
}

func NewStaticTopicSource(questions map[string][]domain.Question) *StaticTopicSource {
	topics := make([]string, 0, len(questions))
	for topic := range questions {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return &StaticTopicSource{topics: topics, questions: questions}
}

func (s *StaticTopicSource) ListTopics(_ context.Context) ([]string, error) {
	return append([]string{}, s.topics...), nil
}

func (s *StaticTopicSource) QuestionsForTopic(_ context.Context, count int, topic string) ([]domain.Question, error) {
	available := s.questions[topic]
	if count > len(available) {
		count = len(available)
	}
	return append([]domain.Question{}, available[:count]...), nil
}
