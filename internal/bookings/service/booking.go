package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "playverse/internal/bookings/errors"
	"playverse/internal/bookings/repository"
	"playverse/internal/bookings/validator"
	"playverse/pkg/config"
	apperrors "playverse/pkg/errors"
	"playverse/pkg/kafka"
	"playverse/pkg/model"
	"playverse/pkg/msg91"
	"playverse/pkg/payu"
)

// PaymentGateway is the part of the PayU client the booking workflow needs.
type PaymentGateway interface {
	BuildPaymentRequest(req payu.PaymentRequest) payu.PaymentForm
	Verify(r *payu.Response) error
	Refund(ctx context.Context, req payu.RefundRequest) (*payu.RefundResult, error)
}

type Messenger interface {
	Send(ctx context.Context, t msg91.Template) (map[string]any, error)
}

// Alerts configures the admin occupancy messages.
type Alerts struct {
	AdminPhone   string
	EventBaseURL string
	Templates    msg91.Templates
	Messenger    Messenger
}

type BookingService interface {
	Reserve(ctx context.Context, eventID string, req *model.BookingRequest) (*Reservation, error)
	Reconcile(ctx context.Context, n Notification) (*Result, error)
	HandleGatewayResponse(ctx context.Context, source Source, resp *payu.Response) (*Result, error)
	Refund(ctx context.Context, eventID, participantID string) (*RefundOutcome, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	gateway   PaymentGateway
	alerts    Alerts
	publisher kafka.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	gateway PaymentGateway,
	alerts Alerts,
	publisher kafka.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = kafka.NoopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		validator: validator,
		gateway:   gateway,
		alerts:    alerts,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *bookingService) mapRepoError(err error, op, key string) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, bookingserrors.ErrEventNotFound):
		return apperrors.NotFound("Event")
	case errors.Is(err, bookingserrors.ErrParticipantNotFound):
		return apperrors.NotFound("Participant")
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid ID format")
	}
	s.cfg.Log.Error("Booking repository operation failed", "operation", op, "key", key, "error", err)
	return apperrors.Internal("Server error", err)
}

// publish is best effort: the booking state is already committed when it runs.
func (s *bookingService) publish(ctx context.Context, eventType string, payload kafka.BookingEvent) {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = s.now()
	}
	msg := kafka.NewBookingMessage(eventType, payload, payload.TxnID)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"event_id", payload.EventID,
			"txnid", payload.TxnID,
			"error", err,
		)
	}
}

func eventDetails(e *model.Event) msg91.EventDetails {
	return msg91.EventDetails{
		ID:         e.ID.Hex(),
		Name:       e.Name,
		VenueName:  e.VenueName,
		SportsName: e.SportsName,
		Location:   e.Location,
		Slot:       e.Slot,
		Date:       e.Date,
		VenueImage: e.VenueImage,
	}
}
