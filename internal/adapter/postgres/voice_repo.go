package postgres

import (
	"context"
	"time"

	"babytracker/internal/domain"
)

// CreateVoiceCommand records a received utterance as unprocessed.
func (d *DB) CreateVoiceCommand(ctx context.Context, userID int64, command string, timestamp time.Time) (*domain.VoiceCommand, error) {
	vc := domain.VoiceCommand{UserID: userID, Command: command, Timestamp: timestamp.UTC()}
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO voice_commands(user_id, command, processed, timestamp) VALUES($1, $2, FALSE, $3) RETURNING id;",
		userID, command, vc.Timestamp,
	).Scan(&vc.ID)
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

// MarkVoiceCommandProcessed flags a voice command as having produced an event.
func (d *DB) MarkVoiceCommandProcessed(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, "UPDATE voice_commands SET processed = TRUE WHERE id = $1;", id)
	return err
}
