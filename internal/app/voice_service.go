package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"babytracker/internal/domain"
	"babytracker/internal/interpreter"
)

// CommandInterpreter maps an utterance to a typed event payload.
type CommandInterpreter interface {
	Interpret(utterance string) (interpreter.Result, error)
}

// VoiceOutcome is the result of a voice command that produced an event.
type VoiceOutcome struct {
	Event   *domain.Event `json:"event"`
	Message string        `json:"message"`
}

// VoiceService turns voice transcripts into events.
type VoiceService struct {
	commands domain.VoiceCommandRepository
	events   domain.EventRepository
	babies   domain.BabyRepository
	interp   CommandInterpreter
	log      *zap.Logger
	now      func() time.Time
}

// NewVoiceService creates a VoiceService.
func NewVoiceService(commands domain.VoiceCommandRepository, events domain.EventRepository, babies domain.BabyRepository, interp CommandInterpreter, log *zap.Logger) *VoiceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VoiceService{
		commands: commands,
		events:   events,
		babies:   babies,
		interp:   interp,
		log:      log,
		now:      time.Now,
	}
}

// Process records the command, interprets it and stores the resulting event.
// Rejections from the interpreter are returned unchanged and nothing but the
// command record is persisted.
func (s *VoiceService) Process(ctx context.Context, userID int64, command string) (*VoiceOutcome, error) {
	baby, err := babyFor(ctx, s.babies, userID)
	if err != nil {
		return nil, err
	}

	vc, err := s.commands.CreateVoiceCommand(ctx, userID, command, s.now())
	if err != nil {
		return nil, fmt.Errorf("record voice command: %w", err)
	}

	res, err := s.interp.Interpret(command)
	if err != nil {
		s.log.Info("voice command not understood",
			zap.Int64("user_id", userID),
			zap.Int64("command_id", vc.ID),
			zap.String("command", command))
		return nil, err
	}

	data, err := domain.EncodePayload(res.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", res.Category, err)
	}

	event, err := s.events.SaveEvent(ctx, baby.ID, res.Category, data, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.commands.MarkVoiceCommandProcessed(ctx, vc.ID); err != nil {
		s.log.Warn("mark voice command processed", zap.Int64("command_id", vc.ID), zap.Error(err))
	}

	s.log.Debug("voice command logged event",
		zap.Int64("user_id", userID),
		zap.Int64("event_id", event.ID),
		zap.String("category", string(res.Category)))

	return &VoiceOutcome{
		Event:   event,
		Message: fmt.Sprintf("Logged %s event successfully", res.Category),
	}, nil
}
