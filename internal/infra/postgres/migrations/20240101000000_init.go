package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS topics (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS questions (
	id BIGSERIAL PRIMARY KEY,
	topic_id BIGINT NOT NULL REFERENCES topics(id),
	question_text VARCHAR(500) NOT NULL,
	correct_answer VARCHAR(500) NOT NULL,
	explanation VARCHAR(1000),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accounts (
	id BIGSERIAL PRIMARY KEY,
	username VARCHAR(50) NOT NULL,
	avatar_image_name VARCHAR(100) NOT NULL DEFAULT '',
	xp INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game_sessions (
	id BIGSERIAL PRIMARY KEY,
	room_id VARCHAR(64) NOT NULL,
	total_rounds INTEGER NOT NULL,
	config_snapshot TEXT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS game_participants (
	id BIGSERIAL PRIMARY KEY,
	game_session_id BIGINT NOT NULL REFERENCES game_sessions(id),
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	final_score INTEGER NOT NULL,
	final_rank INTEGER NOT NULL
);
`

const dropTablesSQL = `
DROP TABLE IF EXISTS game_participants;
DROP TABLE IF EXISTS game_sessions;
DROP TABLE IF EXISTS accounts;
DROP TABLE IF EXISTS questions;
DROP TABLE IF EXISTS topics;
`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, dropTablesSQL)
			return err
		},
	)
}
