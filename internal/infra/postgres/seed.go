package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// TopicSeed is one topic with its questions, as read from a seed file.
type TopicSeed struct {
	Topic     string         `json:"topic"`
	Questions []QuestionSeed `json:"questions"`
}

// QuestionSeed is one question row in a seed file.
type QuestionSeed struct {
	Text          string `json:"text"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

type topicRow struct {
	bun.BaseModel `bun:"table:topics"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            int64  `bun:"id,pk,autoincrement"`
	TopicID       int64  `bun:"topic_id,notnull"`
	QuestionText  string `bun:"question_text,notnull"`
	CorrectAnswer string `bun:"correct_answer,notnull"`
	Explanation   string `bun:"explanation"`
}

// SeedContent inserts topics and questions, skipping topics that already exist.
func SeedContent(ctx context.Context, db *bun.DB, seeds []TopicSeed) error {
	for _, seed := range seeds {
		topic := &topicRow{Name: seed.Topic}
		if _, err := db.NewInsert().
			Model(topic).
			On("CONFLICT (name) DO UPDATE SET name = EXCLUDED.name").
			Returning("id").
			Exec(ctx); err != nil {
			return fmt.Errorf("seed topic %q: %w", seed.Topic, err)
		}

		for _, q := range seed.Questions {
			row := &questionRow{
				TopicID:       topic.ID,
				QuestionText:  q.Text,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			}
			if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("seed question for %q: %w", seed.Topic, err)
			}
		}
	}
	return nil
}
