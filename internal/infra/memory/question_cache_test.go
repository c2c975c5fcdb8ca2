package memory

import (
	"context"
	"testing"
	"time"

	"fakeout-service/internal/content"
	"fakeout-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	source := &countingSource{
		TopicSource: NewStaticTopicSource(sampleQuestions()),
	}
	cache := NewQuestionCache(source, time.Minute)

	if _, err := cache.QuestionsForTopic(context.Background(), 2, "Science"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source once, got %d", source.calls)
	}

	questions, err := cache.QuestionsForTopic(context.Background(), 1, "Science")
	if err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
	if len(questions) != 1 {
		t.Fatalf("expected clipped batch of 1, got %d", len(questions))
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	source := &countingSource{
		TopicSource: NewStaticTopicSource(sampleQuestions()),
	}
	cache := NewQuestionCache(source, time.Minute)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	if _, err := cache.QuestionsForTopic(context.Background(), 1, "Science"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.QuestionsForTopic(context.Background(), 1, "Science"); err != nil {
		t.Fatalf("fetch after expiry: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refill after expiry, source calls %d", source.calls)
	}
}

type countingSource struct {
	content.TopicSource
	calls int
}

func (s *countingSource) QuestionsForTopic(ctx context.Context, count int, topic string) ([]domain.Question, error) {
	s.calls++
	return s.TopicSource.QuestionsForTopic(ctx, count, topic)
}

func sampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		"Science": {
			{ID: 1, Topic: "Science", Text: "What is the chemical symbol for gold?", CorrectAnswer: "Au"},
			{ID: 2, Topic: "Science", Text: "What planet has the most moons?", CorrectAnswer: "Saturn"},
		},
		"History": {
			{ID: 3, Topic: "History", Text: "In which year did the Berlin Wall fall?", CorrectAnswer: "1989"},
		},
	}
}
