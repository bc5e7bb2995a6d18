package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrProfileNotFound = errors.New("user profile not found")
	ErrNilProfile      = errors.New("user profile is nil")
	ErrInvalidUserID   = errors.New("user id is empty")
)

// Store is the persistence contract consumed by the orchestrator. Writes are
// whole-record overwrites; concurrent saves for the same user resolve as
// last-writer-wins (no per-user serialization — see DESIGN.md).
type Store interface {
	Load(ctx context.Context, userID string) (*UserProfile, error)
	Save(ctx context.Context, p *UserProfile) error
	Delete(ctx context.Context, userID string) error
}

// FileStore keeps one JSON document per user under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("profile directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(_ context.Context, userID string) (*UserProfile, error) {
	path, err := s.profilePath(userID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile for user=%s: %w", userID, err)
	}
	if p.ID == "" {
		p.ID = userID
	}
	return &p, nil
}

func (s *FileStore) Save(_ context.Context, p *UserProfile) error {
	if p == nil {
		return ErrNilProfile
	}
	path, err := s.profilePath(p.ID)
	if err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	// Write-then-rename so a crashed write never leaves a truncated record.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, userID string) error {
	path, err := s.profilePath(userID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func (s *FileStore) profilePath(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidUserID
	}
	return filepath.Join(s.dir, sanitizeUserID(userID)+".json"), nil
}

// sanitizeUserID maps a user id onto a safe file name; ids are phone-number
// derived so this is normally a no-op.
func sanitizeUserID(userID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
}
