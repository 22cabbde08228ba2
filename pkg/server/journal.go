package server

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// Journal records every player command in a SQLite database. It gives
// operators an audit trail and a way to reconstruct sessions after
// crashes or abuse reports.
type Journal struct {
	db *sql.DB
}

// JournalEntry is one recorded command.
type JournalEntry struct {
	ID     int64
	Time   time.Time
	Player string
	Line   string
}

// OpenJournal opens (or creates) the journal database.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	// WAL keeps writers from blocking the game loop.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("journal: enable WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		log.Printf("journal: set busy_timeout: %v", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts INTEGER NOT NULL,
		player TEXT NOT NULL,
		line TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_commands_player ON commands(player);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one command. Failures are logged, not returned; the
// journal must never take the game down.
func (j *Journal) Record(player, line string) {
	_, err := j.db.Exec("INSERT INTO commands (ts, player, line) VALUES (?, ?, ?)",
		time.Now().Unix(), player, line)
	if err != nil {
		log.Printf("journal: record: %v", err)
	}
}

// Recent returns the last n commands for a player, newest first. An
// empty player name returns commands from everyone.
func (j *Journal) Recent(player string, n int) ([]JournalEntry, error) {
	query := "SELECT id, ts, player, line FROM commands"
	args := []any{}
	if player != "" {
		query += " WHERE player = ?"
		args = append(args, player)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, n)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var ts int64
		if err := rows.Scan(&e.ID, &ts, &e.Player, &e.Line); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Time = time.Unix(ts, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes entries older than the cutoff. Returns rows deleted.
func (j *Journal) Prune(olderThan time.Time) (int64, error) {
	res, err := j.db.Exec("DELETE FROM commands WHERE ts < ?", olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	return res.RowsAffected()
}
