package postgres

import "babytracker/internal/domain"

var (
	_ domain.UserRepository         = (*DB)(nil)
	_ domain.BabyRepository         = (*DB)(nil)
	_ domain.EventRepository        = (*DB)(nil)
	_ domain.VoiceCommandRepository = (*DB)(nil)
	_ domain.SessionRepository      = (*SessionRepo)(nil)
)
