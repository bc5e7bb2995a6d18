package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type profileRecord struct {
	bun.BaseModel `bun:"table:user_profiles,alias:up"`

	UserID    string    `bun:"user_id,pk"`
	Payload   []byte    `bun:"payload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunStore persists profiles in Postgres, one row per user with the same
// JSON payload the file store writes. Selected by SAFIRI_STORE_BACKEND.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(dsn string) (*BunStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &BunStore{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

// Init creates the backing table if it does not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*profileRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create user_profiles table: %w", err)
	}
	return nil
}

func (s *BunStore) Load(ctx context.Context, userID string) (*UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	var rec profileRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("select profile: %w", err)
	}

	var p UserProfile
	if err := json.Unmarshal(rec.Payload, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile for user=%s: %w", userID, err)
	}
	if p.ID == "" {
		p.ID = userID
	}
	return &p, nil
}

func (s *BunStore) Save(ctx context.Context, p *UserProfile) error {
	if p == nil {
		return ErrNilProfile
	}
	userID := strings.TrimSpace(p.ID)
	if userID == "" {
		return ErrInvalidUserID
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	rec := profileRecord{
		UserID:    userID,
		Payload:   payload,
		UpdatedAt: p.UpdatedAt,
	}
	if _, err := s.db.NewInsert().
		Model(&rec).
		On("CONFLICT (user_id) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *BunStore) Delete(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidUserID
	}
	if _, err := s.db.NewDelete().
		Model((*profileRecord)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}
