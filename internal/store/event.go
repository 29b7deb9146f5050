package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
)

// Event is a journaled gesture event.
type Event struct {
	ID string `json:"id"`
	gesture.Event
	CreatedAt time.Time `json:"created_at"`
}

// EventFilter narrows an event listing. Zero values mean no restriction.
type EventFilter struct {
	Type  gesture.Type
	Since time.Time
	Limit int
}

// EventRepository provides access to the event journal.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append journals ev and returns the stored record.
func (r *EventRepository) Append(ev gesture.Event) (*Event, error) {
	if ev.IsNone() {
		return nil, errors.New("cannot journal an event of type None")
	}

	rec := &Event{ID: uuid.NewString(), Event: ev, CreatedAt: time.Now()}
	_, err := r.db.Exec(
		`INSERT INTO events (id, type, x, y, value, finger_count, ts_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, ev.Type.String(), ev.X, ev.Y, ev.Value, ev.FingerCount, ev.Timestamp.UnixMilli(), rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	return rec, nil
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	row := r.db.QueryRow(
		`SELECT id, type, x, y, value, finger_count, ts_ms, created_at
		 FROM events WHERE id = ?`,
		id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns events newest first.
func (r *EventRepository) List(f EventFilter) ([]*Event, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != gesture.None {
		where = append(where, "type = ?")
		args = append(args, f.Type.String())
	}
	if !f.Since.IsZero() {
		where = append(where, "ts_ms >= ?")
		args = append(args, f.Since.UnixMilli())
	}

	query := `SELECT id, type, x, y, value, finger_count, ts_ms, created_at FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts_ms DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByType returns the number of journaled events per gesture type.
func (r *EventRepository) CountByType() (map[gesture.Type]int, error) {
	rows, err := r.db.Query(`SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[gesture.Type]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		t, err := gesture.ParseType(name)
		if err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// Clear deletes every journaled event and returns how many were removed.
func (r *EventRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Prune keeps only the newest keep events.
func (r *EventRepository) Prune(keep int) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM events WHERE rowid NOT IN (
			SELECT rowid FROM events ORDER BY ts_ms DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*Event, error) {
	e := &Event{}
	var typeName string
	var tsMs int64
	if err := s.Scan(&e.ID, &typeName, &e.X, &e.Y, &e.Value, &e.FingerCount, &tsMs, &e.CreatedAt); err != nil {
		return nil, err
	}
	t, err := gesture.ParseType(typeName)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", e.ID, err)
	}
	e.Type = t
	e.Timestamp = time.UnixMilli(tsMs)
	return e, nil
}
