package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"playverse/internal/events/repository"
)

type VenueDay struct {
	Date   string                  `json:"date"`
	Venues []repository.VenueGroup `json:"venues"`
}

type VenueCount struct {
	VenueName   string `json:"venueName"`
	TotalEvents int    `json:"totalEvents"`
}

type DailyReport struct {
	Date               string       `json:"date"`
	TotalVenuesChecked int          `json:"totalVenuesChecked"`
	VenuesWithNoEvents []string     `json:"venuesWithNoEvents"`
	VenuesWithEvents   []VenueCount `json:"venuesWithEvents"`
}

type PaidParticipant struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
}

type EventPayments struct {
	EventID      string            `json:"eventId"`
	EventName    string            `json:"eventName"`
	Participants []PaidParticipant `json:"participants"`
}

// today returns the UTC day bounds for the current calendar date in the event time zone.
// Event dates are stored as midnight UTC of their calendar day.
func (s *eventService) today() (time.Time, time.Time) {
	loc := s.cfg.EventLocation
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := s.now().In(loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return from, from.Add(24 * time.Hour)
}

func (s *eventService) TodayByVenue(ctx context.Context) (*VenueDay, error) {
	from, to := s.today()
	groups, err := s.repo.GroupByVenue(ctx, from, to)
	if err != nil {
		return nil, s.mapRepoError(err, "fetch today's events", from.Format(time.DateOnly))
	}
	return &VenueDay{Date: from.Format(time.DateOnly), Venues: groups}, nil
}

// DailyReport checks every catalogued venue for events today.
func (s *eventService) DailyReport(ctx context.Context) (*DailyReport, error) {
	from, to := s.today()

	groups, err := s.repo.GroupByVenue(ctx, from, to)
	if err != nil {
		return nil, s.mapRepoError(err, "generate report", from.Format(time.DateOnly))
	}
	venues, err := s.venues.FindAll(ctx)
	if err != nil {
		return nil, s.mapRepoError(err, "generate report", from.Format(time.DateOnly))
	}

	withEvents := make(map[string]bool, len(groups))
	counts := make([]VenueCount, 0, len(groups))
	for _, g := range groups {
		withEvents[strings.ToLower(strings.TrimSpace(g.Venue))] = true
		counts = append(counts, VenueCount{VenueName: g.Venue, TotalEvents: g.TotalEvents})
	}

	checked := map[string]bool{}
	noEvents := []string{}
	for _, v := range venues {
		key := strings.ToLower(strings.TrimSpace(v.Name))
		if checked[key] {
			continue
		}
		checked[key] = true
		if !withEvents[key] {
			noEvents = append(noEvents, v.Name)
		}
	}
	sort.Strings(noEvents)

	return &DailyReport{
		Date:               from.Format(time.DateOnly),
		TotalVenuesChecked: len(checked),
		VenuesWithNoEvents: noEvents,
		VenuesWithEvents:   counts,
	}, nil
}

func (s *eventService) EventsWithPayments(ctx context.Context) ([]EventPayments, error) {
	events, err := s.repo.FindWithSuccessfulPayments(ctx)
	if err != nil {
		return nil, s.mapRepoError(err, "fetch events with payments", "")
	}

	result := make([]EventPayments, 0, len(events))
	for _, e := range events {
		paid := e.SuccessfulParticipants()
		if len(paid) == 0 {
			continue
		}
		participants := make([]PaidParticipant, 0, len(paid))
		for _, p := range paid {
			participants = append(participants, PaidParticipant{
				ID:        p.ID.Hex(),
				Name:      p.Name,
				PaymentID: p.PaymentID,
				Amount:    p.Amount,
			})
		}
		result = append(result, EventPayments{
			EventID:      e.ID.Hex(),
			EventName:    e.Name,
			Participants: participants,
		})
	}
	return result, nil
}
