// Package archive keeps finished games in a sqlite database.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	played_at        INTEGER NOT NULL,
	white            TEXT    NOT NULL,
	black            TEXT    NOT NULL,
	result           TEXT    NOT NULL,
	reason           TEXT    NOT NULL,
	difficulty       INTEGER NOT NULL,
	plies            INTEGER NOT NULL,
	duration_seconds INTEGER NOT NULL,
	pgn              TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS games_played_at ON games (played_at);
`

// Record is one archived game. Result uses PGN notation ("1-0", "0-1",
// "1/2-1/2").
type Record struct {
	ID         int64
	PlayedAt   time.Time
	White      string
	Black      string
	Result     string
	Reason     string
	Difficulty int
	Plies      int
	Duration   time.Duration
	PGN        string
}

// Archive is a handle on the games database. It is safe for concurrent use.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway archive.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers from concurrent arena games.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores r and returns its row id.
func (a *Archive) Save(ctx context.Context, r Record) (int64, error) {
	if r.PlayedAt.IsZero() {
		r.PlayedAt = time.Now()
	}
	res, err := a.db.ExecContext(ctx, `
		INSERT INTO games (played_at, white, black, result, reason, difficulty, plies, duration_seconds, pgn)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PlayedAt.Unix(), r.White, r.Black, r.Result, r.Reason,
		r.Difficulty, r.Plies, int64(r.Duration/time.Second), r.PGN,
	)
	if err != nil {
		return 0, fmt.Errorf("saving game: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit games, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, played_at, white, black, result, reason, difficulty, plies, duration_seconds, pgn
		FROM games
		ORDER BY played_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			playedAt int64
			seconds  int64
		)
		if err := rows.Scan(&r.ID, &playedAt, &r.White, &r.Black, &r.Result, &r.Reason,
			&r.Difficulty, &r.Plies, &seconds, &r.PGN); err != nil {
			return nil, err
		}
		r.PlayedAt = time.Unix(playedAt, 0)
		r.Duration = time.Duration(seconds) * time.Second
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of archived games.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n)
	return n, err
}

// Results tallies archived games by result string.
func (a *Archive) Results(ctx context.Context) (map[string]int, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT result, COUNT(*) FROM games GROUP BY result`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			result string
			n      int
		)
		if err := rows.Scan(&result, &n); err != nil {
			return nil, err
		}
		out[result] = n
	}
	return out, rows.Err()
}
