// Package interpreter turns a finalized voice transcript into a typed event
// payload.
//
// Classification is a keyword scan over an ordered rule list: the first rule
// whose keyword occurs anywhere in the utterance wins, so "feeding" beats
// "diaper", which beats "sleep". Field extraction never fails; a recognized
// category with nothing else to go on yields an empty or defaulted payload.
package interpreter

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"babytracker/internal/domain"
)

// RejectionMessage is reported to the caregiver when an utterance cannot be
// classified.
const RejectionMessage = "Could not understand command. Try saying 'feeding', 'diaper', or 'sleep'"

var (
	// ErrEmptyUtterance is returned for empty or whitespace-only input.
	ErrEmptyUtterance = errors.New(RejectionMessage)
	// ErrUnrecognizedCategory is returned when no category keyword matches.
	ErrUnrecognizedCategory = errors.New(RejectionMessage)
)

// Result is a successful interpretation.
type Result struct {
	Category domain.Category
	Payload  domain.Payload
}

type rule struct {
	keyword  string
	category domain.Category
	extract  func(utterance string, now time.Time) domain.Payload
}

// Order matters.
var rules = []rule{
	{keyword: "feeding", category: domain.CategoryFeeding, extract: extractFeeding},
	{keyword: "diaper", category: domain.CategoryDiaper, extract: extractDiaper},
	{keyword: "sleep", category: domain.CategorySleep, extract: extractSleep},
}

// The leading class keeps the number whole: ".5", "4,5" and "1/2" yield no
// amount rather than their trailing digit.
var amountPattern = regexp.MustCompile(`(?:^|[^\d.,/])(\d+(?:\.\d+)?)\s*(?:oz|ounces?)\b`)

// Interpreter interprets utterances against a clock.
type Interpreter struct {
	now func() time.Time
}

// New returns an Interpreter using the wall clock for capture time.
func New() *Interpreter {
	return &Interpreter{now: time.Now}
}

// NewWithClock returns an Interpreter that reads capture time from now.
func NewWithClock(now func() time.Time) *Interpreter {
	return &Interpreter{now: now}
}

// Interpret classifies utterance and extracts its fields, using the
// interpreter's clock as capture time.
func (i *Interpreter) Interpret(utterance string) (Result, error) {
	return Interpret(utterance, i.now())
}

// Interpret classifies utterance and extracts its fields. now is the capture
// time stamped on sleep payloads.
func Interpret(utterance string, now time.Time) (Result, error) {
	u := strings.ToLower(strings.TrimSpace(utterance))
	if u == "" {
		return Result{}, ErrEmptyUtterance
	}
	for _, r := range rules {
		if strings.Contains(u, r.keyword) {
			return Result{Category: r.category, Payload: r.extract(u, now)}, nil
		}
	}
	return Result{}, ErrUnrecognizedCategory
}

// Rejected reports whether err is an interpretation rejection.
func Rejected(err error) bool {
	return errors.Is(err, ErrEmptyUtterance) || errors.Is(err, ErrUnrecognizedCategory)
}

func extractFeeding(u string, _ time.Time) domain.Payload {
	var p domain.FeedingPayload
	switch {
	case strings.Contains(u, "formula"):
		p.Type = domain.FeedingFormula
	case strings.Contains(u, "breast"), strings.Contains(u, "milk"):
		p.Type = domain.FeedingBreastMilk
	}
	if m := amountPattern.FindStringSubmatch(u); m != nil {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.Amount = &amount
		}
	}
	return p
}

func extractDiaper(u string, _ time.Time) domain.Payload {
	wet := strings.Contains(u, "wet")
	dirty := strings.Contains(u, "dirty")
	switch {
	case wet && dirty:
		return domain.DiaperPayload{Type: domain.DiaperBoth}
	case dirty:
		return domain.DiaperPayload{Type: domain.DiaperDirty}
	default:
		return domain.DiaperPayload{Type: domain.DiaperWet}
	}
}

func extractSleep(u string, now time.Time) domain.Payload {
	p := domain.SleepPayload{StartTime: now}
	if strings.Contains(u, "woke") || strings.Contains(u, "end") {
		end := now
		p.EndTime = &end
	}
	return p
}
