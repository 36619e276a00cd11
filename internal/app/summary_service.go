package app

import (
	"context"
	"errors"
	"time"

	"babytracker/internal/domain"
)

// SummaryService aggregates events into per-day totals.
type SummaryService struct {
	events domain.EventRepository
	now    func() time.Time
}

// NewSummaryService creates a SummaryService backed by the given repository.
func NewSummaryService(events domain.EventRepository) *SummaryService {
	return &SummaryService{events: events, now: time.Now}
}

// DayPoint is a single day returned by GetDaily.
type DayPoint struct {
	Day           string  `json:"day"`
	Feedings      int     `json:"feedings"`
	FeedingAmount float64 `json:"feedingAmount"`
	Diapers       int     `json:"diapers"`
	WetDiapers    int     `json:"wetDiapers"`
	DirtyDiapers  int     `json:"dirtyDiapers"`
	Sleeps        int     `json:"sleeps"`
	SleepMinutes  float64 `json:"sleepMinutes"`
}

// GetDaily returns per-day totals for the last days days, oldest first, with
// feeding amounts converted to unit.
func (s *SummaryService) GetDaily(ctx context.Context, userID int64, days int, unit string) ([]DayPoint, error) {
	if unit != "oz" && unit != "ml" {
		return nil, errors.New("unit must be \"oz\" or \"ml\"")
	}
	if days <= 0 {
		return nil, errors.New("days must be > 0")
	}
	if days > 366 {
		days = 366
	}

	today := s.now().In(time.Local)
	first := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, -(days - 1))

	events, err := s.events.EventsSince(ctx, userID, first)
	if err != nil {
		return nil, err
	}

	points := make([]DayPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		day := first.AddDate(0, 0, i).Format("2006-01-02")
		points[i].Day = day
		index[day] = i
	}

	for _, e := range events {
		i, ok := index[e.Timestamp.In(time.Local).Format("2006-01-02")]
		if !ok {
			continue
		}
		addEvent(&points[i], e, unit)
	}
	return points, nil
}

// addEvent counts e into p. Payloads that fail to decode still count.
func addEvent(p *DayPoint, e domain.Event, unit string) {
	payload, _ := domain.DecodePayload(e.Category, e.Data)
	switch e.Category {
	case domain.CategoryFeeding:
		p.Feedings++
		if f, ok := payload.(domain.FeedingPayload); ok && f.Amount != nil {
			p.FeedingAmount += domain.ConvertVolume(*f.Amount, "oz", unit)
		}
	case domain.CategoryDiaper:
		p.Diapers++
		if d, ok := payload.(domain.DiaperPayload); ok {
			if d.Type == domain.DiaperWet || d.Type == domain.DiaperBoth {
				p.WetDiapers++
			}
			if d.Type == domain.DiaperDirty || d.Type == domain.DiaperBoth {
				p.DirtyDiapers++
			}
		}
	case domain.CategorySleep:
		p.Sleeps++
		if sl, ok := payload.(domain.SleepPayload); ok {
			switch {
			case sl.Duration != nil:
				p.SleepMinutes += *sl.Duration
			case sl.EndTime != nil:
				p.SleepMinutes += sl.EndTime.Sub(sl.StartTime).Minutes()
			}
		}
	}
}
