package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"babytracker/internal/domain"
)

const eventColumns = "e.id, e.baby_id, e.type, e.data, e.timestamp"

// SaveEvent inserts a new event.
func (d *DB) SaveEvent(ctx context.Context, babyID int64, category domain.Category, data string, timestamp time.Time) (*domain.Event, error) {
	e := domain.Event{BabyID: babyID, Category: category, Data: data, Timestamp: timestamp.UTC()}
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO events(baby_id, type, data, timestamp) VALUES($1, $2, $3, $4) RETURNING id;",
		babyID, string(category), data, e.Timestamp,
	).Scan(&e.ID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEvent returns an event by ID, or nil if not found.
func (d *DB) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events e WHERE e.id = $1;", id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEvent replaces the category and data of an existing event.
func (d *DB) UpdateEvent(ctx context.Context, e *domain.Event) error {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE events SET type = $1, data = $2 WHERE id = $3;",
		string(e.Category), e.Data, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update event %d: not found", e.ID)
	}
	return nil
}

// ListEventsByOwner returns the most recent events of the user's baby.
// A non-positive limit returns every event.
func (d *DB) ListEventsByOwner(ctx context.Context, userID int64, limit int) ([]domain.Event, error) {
	q := "SELECT " + eventColumns + " FROM events e JOIN babies b ON b.id = e.baby_id WHERE b.user_id = $1 ORDER BY e.timestamp DESC, e.id DESC"
	args := []any{userID}
	if limit > 0 {
		q += " LIMIT $2"
		args = append(args, limit)
	}
	return d.queryEvents(ctx, q+";", args...)
}

// EventsSince returns the events of the user's baby recorded at or after since.
func (d *DB) EventsSince(ctx context.Context, userID int64, since time.Time) ([]domain.Event, error) {
	return d.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM events e JOIN babies b ON b.id = e.baby_id WHERE b.user_id = $1 AND e.timestamp >= $2 ORDER BY e.timestamp DESC, e.id DESC;",
		userID, since.UTC())
}

func (d *DB) queryEvents(ctx context.Context, q string, args ...any) ([]domain.Event, error) {
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*domain.Event, error) {
	var (
		e        domain.Event
		category string
	)
	if err := s.Scan(&e.ID, &e.BabyID, &category, &e.Data, &e.Timestamp); err != nil {
		return nil, err
	}
	e.Category = domain.Category(category)
	return &e, nil
}
