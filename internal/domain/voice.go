package domain

import (
	"context"
	"time"
)

// VoiceCommand records an utterance received from a caregiver.
type VoiceCommand struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Command   string    `json:"command"`
	Processed bool      `json:"processed"`
	Timestamp time.Time `json:"timestamp"`
}

// VoiceCommandRepository is the port for voice command persistence.
type VoiceCommandRepository interface {
	CreateVoiceCommand(ctx context.Context, userID int64, command string, timestamp time.Time) (*VoiceCommand, error)
	MarkVoiceCommandProcessed(ctx context.Context, id int64) error
}
