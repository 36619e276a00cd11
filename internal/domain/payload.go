package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
)

// FeedingType is the kind of milk given.
type FeedingType string

const (
	FeedingFormula    FeedingType = "formula"
	FeedingBreastMilk FeedingType = "breast_milk"
)

// DiaperType is the state of a changed diaper.
type DiaperType string

const (
	DiaperWet   DiaperType = "wet"
	DiaperDirty DiaperType = "dirty"
	DiaperBoth  DiaperType = "both"
)

// Payload is the category-specific data carried by an Event.
type Payload interface {
	Category() Category
}

// FeedingPayload describes a feeding. Amount is in fluid ounces.
type FeedingPayload struct {
	Type   FeedingType `json:"type,omitempty" validate:"omitempty,oneof=formula breast_milk"`
	Amount *float64    `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Notes  string      `json:"notes,omitempty"`
}

// DiaperPayload describes a diaper change.
type DiaperPayload struct {
	Type  DiaperType `json:"type" validate:"required,oneof=wet dirty both"`
	Notes string     `json:"notes,omitempty"`
}

// SleepPayload describes a sleep session. A nil EndTime is a session still in
// progress. Duration is in minutes.
type SleepPayload struct {
	StartTime time.Time  `json:"startTime" validate:"required"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  *float64   `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Notes     string     `json:"notes,omitempty"`
}

func (FeedingPayload) Category() Category { return CategoryFeeding }
func (DiaperPayload) Category() Category  { return CategoryDiaper }
func (SleepPayload) Category() Category   { return CategorySleep }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(SleepPayload)
		if p.EndTime != nil && p.EndTime.Before(p.StartTime) {
			sl.ReportError(p.EndTime, "EndTime", "endTime", "gtefield", "StartTime")
		}
	}, SleepPayload{})
	return v
}

// ValidatePayload checks p against its category's schema.
func ValidatePayload(p Payload) error {
	if p == nil {
		return fmt.Errorf("payload is required")
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid %s payload: %w", p.Category(), err)
	}
	return nil
}

// EncodePayload validates p and serializes it for storage.
func EncodePayload(p Payload) (string, error) {
	if err := ValidatePayload(p); err != nil {
		return "", err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", p.Category(), err)
	}
	return string(b), nil
}

// DecodePayload parses data as the payload of category c. Unknown fields are
// rejected and the result is validated.
func DecodePayload(c Category, data string) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()

	var (
		p   Payload
		err error
	)
	switch c {
	case CategoryFeeding:
		var v FeedingPayload
		err = dec.Decode(&v)
		p = v
	case CategoryDiaper:
		var v DiaperPayload
		err = dec.Decode(&v)
		p = v
	case CategorySleep:
		var v SleepPayload
		err = dec.Decode(&v)
		p = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, c)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", c, err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid %s payload: trailing data after object", c)
	}
	if err := ValidatePayload(p); err != nil {
		return nil, err
	}
	return p, nil
}
