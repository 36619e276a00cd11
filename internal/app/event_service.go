package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"babytracker/internal/domain"
)

var (
	// ErrNoBaby indicates the caregiver has no baby profile to attach events to.
	ErrNoBaby = errors.New("no baby profile found")
	// ErrEventNotFound indicates the event does not exist or belongs to another caregiver.
	ErrEventNotFound = errors.New("event not found")
	// ErrInvalidEvent wraps category and payload validation failures.
	ErrInvalidEvent = errors.New("invalid event")
)

// EventService encapsulates the form editor use cases: create, edit and list.
type EventService struct {
	events domain.EventRepository
	babies domain.BabyRepository
	now    func() time.Time
}

// NewEventService creates an EventService backed by the given repositories.
func NewEventService(events domain.EventRepository, babies domain.BabyRepository) *EventService {
	return &EventService{events: events, babies: babies, now: time.Now}
}

// Create validates a form submission and stores it as a new event for the
// user's baby, stamped with the current time.
func (s *EventService) Create(ctx context.Context, userID int64, category, data string) (*domain.Event, error) {
	c, normalized, err := normalizeEvent(category, data)
	if err != nil {
		return nil, err
	}
	baby, err := babyFor(ctx, s.babies, userID)
	if err != nil {
		return nil, err
	}
	return s.events.SaveEvent(ctx, baby.ID, c, normalized, s.now())
}

// Update replaces the category and payload of an event owned by the user.
// The original timestamp is kept.
func (s *EventService) Update(ctx context.Context, userID, eventID int64, category, data string) (*domain.Event, error) {
	c, normalized, err := normalizeEvent(category, data)
	if err != nil {
		return nil, err
	}
	baby, err := babyFor(ctx, s.babies, userID)
	if err != nil {
		return nil, err
	}

	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.BabyID != baby.ID {
		return nil, ErrEventNotFound
	}

	e.Category = c
	e.Data = normalized
	if err := s.events.UpdateEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns the user's most recent events, newest first.
func (s *EventService) List(ctx context.Context, userID int64, limit int) ([]domain.Event, error) {
	return s.events.ListEventsByOwner(ctx, userID, limit)
}

// normalizeEvent checks the category and payload and re-encodes the payload
// in canonical form.
func normalizeEvent(category, data string) (domain.Category, string, error) {
	c, err := domain.ParseCategory(category)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	p, err := domain.DecodePayload(c, data)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	encoded, err := domain.EncodePayload(p)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return c, encoded, nil
}

func babyFor(ctx context.Context, babies domain.BabyRepository, userID int64) (*domain.Baby, error) {
	baby, err := babies.GetBabyByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if baby == nil {
		return nil, ErrNoBaby
	}
	return baby, nil
}

// Baby returns the baby profile events are attached to for the user.
func (s *EventService) Baby(ctx context.Context, userID int64) (*domain.Baby, error) {
	return babyFor(ctx, s.babies, userID)
}
