package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"fakeout-service/internal/domain"
)

// AccountRow maps the accounts table.
type AccountRow struct {
	bun.BaseModel `bun:"table:accounts"`

	ID              int64  `bun:"id,pk,autoincrement"`
	Username        string `bun:"username,notnull"`
	AvatarImageName string `bun:"avatar_image_name"`
	Xp              int    `bun:"xp,notnull,default:0"`
}

// GameSessionRow maps the game_sessions table.
type GameSessionRow struct {
	bun.BaseModel `bun:"table:game_sessions"`

	ID             int64     `bun:"id,pk,autoincrement"`
	RoomID         string    `bun:"room_id,notnull"`
	TotalRounds    int       `bun:"total_rounds,notnull"`
	ConfigSnapshot string    `bun:"config_snapshot,notnull"`
	FinishedAt     time.Time `bun:"finished_at,notnull"`
}

// GameParticipantRow maps the game_participants table.
type GameParticipantRow struct {
	bun.BaseModel `bun:"table:game_participants"`

	ID            int64 `bun:"id,pk,autoincrement"`
	GameSessionID int64 `bun:"game_session_id,notnull"`
	AccountID     int64 `bun:"account_id,notnull"`
	FinalScore    int   `bun:"final_score,notnull"`
	FinalRank     int   `bun:"final_rank,notnull"`
}

// ResultStore persists finished games and account lookups through bun.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

// OpenResultStore dials postgres with the bun pgdriver and wraps it.
func OpenResultStore(dsn string) (*ResultStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return NewResultStore(db), nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

func (s *ResultStore) RecordGameSession(ctx context.Context, meta domain.GameSessionMeta) (int64, error) {
	snapshot, err := json.Marshal(map[string]any{"topics": meta.Topics})
	if err != nil {
		return 0, fmt.Errorf("marshal config snapshot: %w", err)
	}
	row := &GameSessionRow{
		RoomID:         meta.RoomID,
		TotalRounds:    meta.TotalRounds,
		ConfigSnapshot: string(snapshot),
		FinishedAt:     time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return 0, fmt.Errorf("insert game session: %w", err)
	}
	return row.ID, nil
}

func (s *ResultStore) RecordGameResult(ctx context.Context, gameSessionID, accountID int64, finalScore, finalRank int) error {
	row := &GameParticipantRow{
		GameSessionID: gameSessionID,
		AccountID:     accountID,
		FinalScore:    finalScore,
		FinalRank:     finalRank,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert game participant: %w", err)
	}
	return nil
}

func (s *ResultStore) AddExperience(ctx context.Context, accountID int64, amount int) error {
	res, err := s.db.NewUpdate().
		Model((*AccountRow)(nil)).
		Set("xp = xp + ?", amount).
		Where("id = ?", accountID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add experience: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (s *ResultStore) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	row := new(AccountRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return &domain.Account{
		ID:              row.ID,
		Username:        row.Username,
		AvatarImageName: row.AvatarImageName,
		Xp:              row.Xp,
	}, nil
}

// CreateAccount registers a new account, used by the seed command and tests.
func (s *ResultStore) CreateAccount(ctx context.Context, username, avatar string) (int64, error) {
	row := &AccountRow{Username: username, AvatarImageName: avatar}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return row.ID, nil
}
