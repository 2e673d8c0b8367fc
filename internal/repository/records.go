// Package repository persists the team-curated records (comps, scrim logs,
// opponent profiles, schedules, goals, roster, chat) as an opaque keyed-record
// store: every collection shares the same id + JSON document shape, and the
// only operations are list, insert, update and delete.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"league-dashboard/internal/constants"
)

// Collections exposed through the dashboard CRUD surface.
const (
	CollectionComps         = "comps"
	CollectionLogs          = "logs"
	CollectionNotes         = "opponent_notes"
	CollectionTournaments   = "tournaments"
	CollectionSchedule      = "schedule_events"
	CollectionDraftBoards   = "draft_boards"
	CollectionOpponents     = "opponent_profiles"
	CollectionSkinGoals     = "skin_goals"
	CollectionPracticeGoals = "practice_goals"
	CollectionMetaWatchlist = "meta_watchlist"
	CollectionRoster        = "roster_members"
	CollectionChat          = "chat_messages"
)

type Record struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MarshalJSON flattens the document fields next to id and timestamps, the
// same row shape the relational store served.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any)
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &flat); err != nil {
			return nil, err
		}
	}
	flat["id"] = r.ID
	flat["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339)
	flat["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339)
	return json.Marshal(flat)
}

type RecordStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRecordStore(db *sql.DB, logger zerolog.Logger) *RecordStore {
	return &RecordStore{db: db, logger: logger}
}

type ListOptions struct {
	// Ascending lists oldest first (chat order); default is newest first.
	Ascending bool
	// Limit caps the result set when positive.
	Limit int
}

func (s *RecordStore) List(ctx context.Context, collection string, opts ListOptions) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	order := "DESC"
	if opts.Ascending {
		order = "ASC"
	}
	query := fmt.Sprintf(
		"SELECT id, data, created_at, updated_at FROM records WHERE collection = ? ORDER BY created_at %s", order)
	args := []any{collection}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var data string
		if err := rows.Scan(&rec.ID, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", collection, err)
		}
		rec.Data = json.RawMessage(data)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *RecordStore) Get(ctx context.Context, collection, id string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var rec Record
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, data, created_at, updated_at FROM records WHERE collection = ? AND id = ?",
		collection, id).Scan(&rec.ID, &data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.Data = json.RawMessage(data)
	return &rec, nil
}

func (s *RecordStore) Insert(ctx context.Context, collection string, data json.RawMessage) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate record id: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO records (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		collection, id, string(data), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s record: %w", collection, err)
	}

	s.logger.Debug().Str("collection", collection).Str("id", id).Msg("record inserted")
	return &Record{ID: id, Data: data, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *RecordStore) Update(ctx context.Context, collection, id string, data json.RawMessage) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"UPDATE records SET data = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(data), now, collection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s record: %w", collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return s.Get(ctx, collection, id)
}

func (s *RecordStore) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
