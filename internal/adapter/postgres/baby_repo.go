package postgres

import (
	"context"
	"database/sql"
	"errors"

	"babytracker/internal/domain"
)

// CreateBaby inserts a baby profile for a user.
func (d *DB) CreateBaby(ctx context.Context, userID int64, name string) (*domain.Baby, error) {
	b := domain.Baby{UserID: userID, Name: name}
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO babies (user_id, name) VALUES ($1, $2) RETURNING id;",
		userID, name,
	).Scan(&b.ID)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBabyByUserID returns the user's baby, or nil if none exists.
func (d *DB) GetBabyByUserID(ctx context.Context, userID int64) (*domain.Baby, error) {
	var b domain.Baby
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, user_id, name FROM babies WHERE user_id = $1;", userID,
	).Scan(&b.ID, &b.UserID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
