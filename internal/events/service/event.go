package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	eventserrors "playverse/internal/events/errors"
	"playverse/internal/events/repository"
	"playverse/internal/events/validator"
	"playverse/pkg/config"
	apperrors "playverse/pkg/errors"
	httputil "playverse/pkg/http"
	"playverse/pkg/model"
	"playverse/pkg/sanitizer"
	"playverse/pkg/slug"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// VenueDirectory is the part of the venue catalogue the event pages need.
type VenueDirectory interface {
	// FindMatching returns nil without error when no venue matches.
	FindMatching(ctx context.Context, name, location, sport string) (*model.Venue, error)
	FindAll(ctx context.Context) ([]*model.Venue, error)
}

type EventList struct {
	Total           int64                `json:"total"`
	Sport           string               `json:"sport"`
	AvailableSports []string             `json:"availableSports"`
	Events          []*model.EventView   `json:"events"`
	Pagination      *httputil.Pagination `json:"pagination,omitempty"`
}

type SuccessfulPayment struct {
	Name       string           `json:"name"`
	Phone      string           `json:"phone"`
	SkillLevel model.SkillLevel `json:"skillLevel"`
	Quantity   int              `json:"quantity"`
	Amount     float64          `json:"amount"`
	PaymentID  string           `json:"paymentId"`
}

type PaymentSummary struct {
	EventName               string              `json:"eventName"`
	SlotsLeft               int                 `json:"slotsLeft"`
	TotalBookedSlots        int                 `json:"totalBookedSlots"`
	TotalSuccessfulPayments int                 `json:"totalSuccessfulPayments"`
	SuccessfulPayments      []SuccessfulPayment `json:"successfulPayments"`
}

type EventService interface {
	List(ctx context.Context, sport string, page httputil.PageRequest) (*EventList, error)
	Get(ctx context.Context, idOrSlug string) (*model.EventView, error)
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, id string, updates *model.EventUpdate) (*model.Event, error)
	Delete(ctx context.Context, id string) (*model.Event, error)
	SuccessfulPayments(ctx context.Context, id string) (*PaymentSummary, error)
	FindBySlot(ctx context.Context, venue, location, date, slot string) (*model.Event, error)

	TodayByVenue(ctx context.Context) (*VenueDay, error)
	DailyReport(ctx context.Context) (*DailyReport, error)
	EventsWithPayments(ctx context.Context) ([]EventPayments, error)

	Import(ctx context.Context, r io.Reader) ([]*model.Event, error)
	Export(ctx context.Context, w io.Writer) error
}

type eventService struct {
	repo      repository.EventRepository
	venues    VenueDirectory
	validator *validator.EventValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewEventService(
	repo repository.EventRepository,
	venues VenueDirectory,
	validator *validator.EventValidator,
	cfg *config.Config,
) EventService {
	return &eventService{
		repo:      repo,
		venues:    venues,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// mapRepoError converts repository sentinels into API errors.
func (s *eventService) mapRepoError(err error, op, key string) error {
	switch {
	case errors.Is(err, eventserrors.ErrNotFound):
		return apperrors.NotFound("Event")
	case errors.Is(err, eventserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid event ID format")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error("Event repository operation failed", "operation", op, "key", key, "error", err)
	return apperrors.Internal(fmt.Sprintf("Failed to %s", op), err)
}

func (s *eventService) List(ctx context.Context, sport string, page httputil.PageRequest) (*EventList, error) {
	requested := sanitizer.NormalizeLabel(sport)
	filterSport := requested
	if requested == "" || requested == "all" {
		filterSport = ""
	}

	var (
		wg        sync.WaitGroup
		total     int64
		sports    []string
		events    []*model.Event
		countErr  error
		sportsErr error
		findErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		total, countErr = s.repo.Count(ctx, filterSport)
	}()
	go func() {
		defer wg.Done()
		sports, sportsErr = s.repo.DistinctSports(ctx)
	}()
	go func() {
		defer wg.Done()
		filter := repository.ListFilter{Sport: filterSport}
		if page.Enabled {
			filter.Skip = page.Skip()
			filter.Limit = int64(page.Limit)
		}
		events, findErr = s.repo.FindAll(ctx, filter)
	}()
	wg.Wait()

	for _, err := range []error{countErr, sportsErr, findErr} {
		if err != nil {
			return nil, s.mapRepoError(err, "fetch events", filterSport)
		}
	}

	views := make([]*model.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, model.NewEventView(e))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].FilledPercent > views[j].FilledPercent
	})

	label := sport
	if label == "" {
		label = "all"
	}
	if sports == nil {
		sports = []string{}
	}

	return &EventList{
		Total:           total,
		Sport:           label,
		AvailableSports: sports,
		Events:          views,
		Pagination:      httputil.NewPagination(page, total),
	}, nil
}

func (s *eventService) Get(ctx context.Context, idOrSlug string) (*model.EventView, error) {
	if idOrSlug == "" {
		return nil, apperrors.InvalidInput("Event ID is required")
	}

	var (
		e   *model.Event
		err error
	)
	if primitive.IsValidObjectID(idOrSlug) {
		e, err = s.repo.FindByID(ctx, idOrSlug)
	} else {
		e, err = s.repo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, s.mapRepoError(err, "fetch event", idOrSlug)
	}

	mapURL := ""
	venue, err := s.venues.FindMatching(ctx, e.VenueName, e.Location, e.SportsName)
	if err != nil {
		s.cfg.Log.Warn("Venue lookup failed, serving event without map link",
			"event_id", e.ID.Hex(),
			"venue", e.VenueName,
			"error", err,
		)
	} else if venue != nil {
		mapURL = venue.MapURL
	}

	view := model.NewEventView(e)
	view.MapURL = &mapURL
	return view, nil
}

func (s *eventService) sanitize(e *model.Event) {
	e.Name = sanitizer.NormalizeName(e.Name)
	e.Description = sanitizer.TrimAndNormalize(e.Description)
	e.Slot = sanitizer.TrimAndNormalize(e.Slot)
	e.SportsName = sanitizer.NormalizeLabel(e.SportsName)
	e.VenueName = sanitizer.NormalizeName(e.VenueName)
	e.Location = sanitizer.NormalizeName(e.Location)
	e.VenueImage = sanitizer.TrimAndNormalize(e.VenueImage)
}

// resetBookingState clears the fields owned by the booking workflow.
func resetBookingState(e *model.Event) {
	e.ID = primitive.NilObjectID
	e.Participants = []model.Participant{}
	e.CurrentParticipants = 0
	e.Notified75 = false
	e.Notified100 = false
	e.ConfirmationCount = 0
	e.CancellationCount = 0
}

func (s *eventService) validate(e *model.Event) error {
	if err := s.validator.Validate(e); err != nil {
		s.cfg.Log.Warn("Event validation failed", "name", e.Name, "error", err)
		return apperrors.Validation("Event validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, e *model.Event) error {
	s.sanitize(e)
	resetBookingState(e)
	if err := s.validate(e); err != nil {
		return err
	}

	e.ID = primitive.NewObjectID()
	base := slug.ForEvent(e.VenueName, e.Location, e.Date, e.Slot)
	e.Slug = base

	err := s.repo.Create(ctx, e)
	if errors.Is(err, eventserrors.ErrDuplicateSlug) {
		e.Slug = slug.Disambiguate(base, e.ID.Hex())
		s.cfg.Log.Info("Event slug taken, using disambiguated slug", "base", base, "slug", e.Slug)
		err = s.repo.Create(ctx, e)
	}
	if err != nil {
		return s.mapRepoError(err, "create event", e.Name)
	}

	s.cfg.Log.Info("Event created successfully",
		"id", e.ID.Hex(),
		"name", e.Name,
		"slug", e.Slug,
		"date", e.Date.Format(time.DateOnly),
	)
	return nil
}

func trimPtr(p *string, fn func(string) string) {
	if p != nil {
		*p = fn(*p)
	}
}

func (s *eventService) Update(ctx context.Context, id string, updates *model.EventUpdate) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID is required")
	}

	trimPtr(updates.Name, sanitizer.NormalizeName)
	trimPtr(updates.Description, sanitizer.TrimAndNormalize)
	trimPtr(updates.Slot, sanitizer.TrimAndNormalize)
	trimPtr(updates.SportsName, sanitizer.NormalizeLabel)
	trimPtr(updates.VenueName, sanitizer.NormalizeName)
	trimPtr(updates.Location, sanitizer.NormalizeName)
	trimPtr(updates.VenueImage, sanitizer.TrimAndNormalize)

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Event validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var (
		e   *model.Event
		err error
	)
	if updates.ParticipantsLimit == nil {
		e, err = s.repo.Update(ctx, id, updates)
	} else {
		// Confirmations write the same document, so the booked total is
		// read and the limit written under one transaction.
		err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			current, err := s.repo.FindByID(sessCtx, id)
			if err != nil {
				return err
			}
			if err := checkLimit(current, *updates.ParticipantsLimit); err != nil {
				return err
			}
			e, err = s.repo.Update(sessCtx, id, updates)
			return err
		})
	}
	if err != nil {
		return nil, s.mapRepoError(err, "update event", id)
	}

	s.cfg.Log.Info("Event updated successfully", "id", id)
	return e, nil
}

// checkLimit rejects a participants limit below the slots already confirmed.
func checkLimit(e *model.Event, limit int) error {
	booked := e.BookedSlots()
	if limit >= booked {
		return nil
	}
	appErr := apperrors.InvalidState(fmt.Sprintf("Participants limit cannot be lower than the %d slots already booked", booked))
	appErr.Details = map[string]any{"bookedSlots": booked}
	return appErr
}

func (s *eventService) Delete(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID is required")
	}

	e, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "delete event", id)
	}

	if booked := e.BookedSlots(); booked > 0 {
		s.cfg.Log.Warn("Deleted event had confirmed bookings", "id", id, "booked_slots", booked)
	}
	s.cfg.Log.Info("Event deleted successfully", "id", id)
	return e, nil
}

func (s *eventService) SuccessfulPayments(ctx context.Context, id string) (*PaymentSummary, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, "fetch successful payments", id)
	}

	successful := e.SuccessfulParticipants()
	payments := make([]SuccessfulPayment, 0, len(successful))
	for _, p := range successful {
		payments = append(payments, SuccessfulPayment{
			Name:       p.Name,
			Phone:      p.Phone,
			SkillLevel: p.SkillLevel,
			Quantity:   p.Quantity,
			Amount:     p.Amount,
			PaymentID:  p.PaymentID,
		})
	}

	return &PaymentSummary{
		EventName:               e.Name,
		SlotsLeft:               e.SlotsLeft(),
		TotalBookedSlots:        e.BookedSlots(),
		TotalSuccessfulPayments: len(payments),
		SuccessfulPayments:      payments,
	}, nil
}

func (s *eventService) FindBySlot(ctx context.Context, venue, location, date, slot string) (*model.Event, error) {
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid date, expected YYYY-MM-DD")
	}

	q := repository.SlotQuery{
		VenueName: sanitizer.TrimAndNormalize(slug.SpacedName(venue)),
		Location:  sanitizer.TrimAndNormalize(slug.SpacedName(location)),
		Day:       day,
		Slot:      slug.SlotFromPath(slot),
	}
	e, err := s.repo.FindBySlot(ctx, q)
	if err != nil {
		return nil, s.mapRepoError(err, "fetch event", venue+"/"+location+"/"+date+"/"+slot)
	}
	return e, nil
}
