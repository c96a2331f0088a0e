package eventlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists journal events in a SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) a SQLite-backed journal at
// the given path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventlog: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		time DATETIME NOT NULL,
		op TEXT NOT NULL,
		actor TEXT NOT NULL,
		block INTEGER NOT NULL,
		amount TEXT,
		attrs TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_op ON events(op);
	CREATE INDEX IF NOT EXISTS idx_events_actor ON events(actor);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts one event.
func (s *Store) Append(e Event) error {
	var attrs []byte
	if len(e.Attrs) > 0 {
		var err error
		attrs, err = json.Marshal(e.Attrs)
		if err != nil {
			return fmt.Errorf("eventlog: marshal attrs: %w", err)
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO events (id, time, op, actor, block, amount, attrs) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.Format(time.RFC3339Nano), e.Op, e.Actor, e.Block, e.Amount, string(attrs),
	)
	if err != nil {
		return fmt.Errorf("eventlog: insert event: %w", err)
	}
	return nil
}

// Events returns stored events, oldest first. An empty op selects all
// operations.
func (s *Store) Events(op string) ([]Event, error) {
	query := `SELECT id, time, op, actor, block, amount, attrs FROM events ORDER BY time, id`
	args := []any{}
	if op != "" {
		query = `SELECT id, time, op, actor, block, amount, attrs FROM events WHERE op = ? ORDER BY time, id`
		args = append(args, op)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("eventlog: query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts, attrs string
		if err := rows.Scan(&e.ID, &ts, &e.Op, &e.Actor, &e.Block, &e.Amount, &attrs); err != nil {
			return nil, fmt.Errorf("eventlog: scan event: %w", err)
		}
		if e.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("eventlog: parse time: %w", err)
		}
		if attrs != "" {
			if err := json.Unmarshal([]byte(attrs), &e.Attrs); err != nil {
				return nil, fmt.Errorf("eventlog: parse attrs: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
