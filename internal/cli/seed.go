package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"fakeout-service/internal/config"
	pginfra "fakeout-service/internal/infra/postgres"
)

// NewSeedCmd loads topics and questions into postgres from a JSON file,
// or the built-in sample set when no file is given.
func NewSeedCmd(configPath *string) *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed topics and questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "file", "", "path to JSON seed file")
	return cmd
}

func runSeed(ctx context.Context, configPath, seedFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	seeds := builtinSeeds()
	if seedFile != "" {
		data, err := os.ReadFile(seedFile)
		if err != nil {
			return err
		}
		seeds = nil
		if err := json.Unmarshal(data, &seeds); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	if err := pginfra.SeedContent(ctx, db, seeds); err != nil {
		return err
	}
	log.Printf("seeded %d topics", len(seeds))
	return nil
}

func builtinSeeds() []pginfra.TopicSeed {
	var seeds []pginfra.TopicSeed
	for topic, questions := range sampleQuestions() {
		seed := pginfra.TopicSeed{Topic: topic}
		for _, q := range questions {
			seed.Questions = append(seed.Questions, pginfra.QuestionSeed{
				Text:          q.Text,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			})
		}
		seeds = append(seeds, seed)
	}
	return seeds
}
