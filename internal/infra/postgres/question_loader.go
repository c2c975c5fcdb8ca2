package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"fakeout-service/internal/domain"
)

// QuestionLoader reads topics and questions from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) ListTopics(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT name FROM topics ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, name)
	}
	return topics, rows.Err()
}

func (l *QuestionLoader) QuestionsForTopic(ctx context.Context, count int, topic string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT q.id, t.name, q.question_text, q.correct_answer, COALESCE(q.explanation, '')
		FROM questions q
		JOIN topics t ON t.id = q.topic_id
		WHERE t.name = $1
		ORDER BY q.id
		LIMIT $2`, topic, count)
	if err != nil {
		return nil, fmt.Errorf("load questions for %q: %w", topic, err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Topic, &q.Text, &q.CorrectAnswer, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
