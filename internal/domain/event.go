package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Category is the closed classification of an event.
type Category string

const (
	CategoryFeeding Category = "feeding"
	CategoryDiaper  Category = "diaper"
	CategorySleep   Category = "sleep"
)

// Categories lists every valid category.
var Categories = []Category{CategoryFeeding, CategoryDiaper, CategorySleep}

// ErrInvalidCategory is returned for anything outside Categories.
var ErrInvalidCategory = errors.New("category must be one of feeding, diaper, sleep")

// ParseCategory validates s as a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Event is a single logged activity. Data holds the category payload
// serialized as JSON text.
type Event struct {
	ID        int64     `json:"id"`
	BabyID    int64     `json:"babyId"`
	Category  Category  `json:"type"`
	Data      string    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// EventRepository is the port for event persistence.
type EventRepository interface {
	SaveEvent(ctx context.Context, babyID int64, category Category, data string, timestamp time.Time) (*Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	UpdateEvent(ctx context.Context, e *Event) error
	// ListEventsByOwner returns the events of the user's baby, newest first.
	ListEventsByOwner(ctx context.Context, userID int64, limit int) ([]Event, error)
	// EventsSince returns the events of the user's baby recorded at or after since, newest first.
	EventsSince(ctx context.Context, userID int64, since time.Time) ([]Event, error)
}
