package service

import (
	"context"
	"time"

	apperrors "playverse/pkg/errors"
	"playverse/pkg/kafka"
	"playverse/pkg/model"
	"playverse/pkg/obs"
	"playverse/pkg/payu"
	"playverse/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
)

const unnamedEvent = "Unknown Event"

// Reservation is everything the browser needs to post the checkout form,
// plus a summary of what is being bought.
type Reservation struct {
	Message string `json:"message"`
	payu.PaymentForm
	EventName     string           `json:"eventName"`
	EventDate     time.Time        `json:"eventDate"`
	Venue         string           `json:"venue"`
	CustomerName  string           `json:"customerName"`
	CustomerPhone string           `json:"customerPhone"`
	SkillLevel    model.SkillLevel `json:"skillLevel"`
	Quantity      int              `json:"quantity"`
	TotalAmount   float64          `json:"totalAmount"`
	ParticipantID string           `json:"participantId"`
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Phone = sanitizer.NormalizePhone(req.Phone)
	req.SkillLevel = model.SkillLevel(sanitizer.NormalizeLabel(string(req.SkillLevel)))
	req.Email = sanitizer.TrimAndNormalize(req.Email)
	req.ClientURL = sanitizer.NormalizeBaseURL(req.ClientURL)
}

// Reserve appends a pending participant when the event still has room and
// returns the signed gateway form. Pending reservations do not hold capacity;
// it is checked again when the payment is confirmed.
func (s *bookingService) Reserve(ctx context.Context, eventID string, req *model.BookingRequest) (res *Reservation, err error) {
	ctx, span := obs.StartSpan(ctx, "booking.reserve", attribute.String("event.id", eventID))
	defer func() { obs.End(span, err) }()

	s.sanitize(req)
	if verr := s.validator.Validate(req); verr != nil {
		s.cfg.Log.Warn("Booking validation failed", "event_id", eventID, "error", verr)
		return nil, apperrors.Validation(verr.Error(), nil)
	}
	quantity := req.Slots()

	// Generated once: the transaction body may run again on a write conflict.
	txnID := payu.NewTransactionID()
	participantID := primitive.NewObjectID()
	span.SetAttributes(attribute.String("booking.txnid", txnID))

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		e, err := s.repo.FindEvent(sessCtx, eventID)
		if err != nil {
			return s.mapRepoError(err, "reserve.find", eventID)
		}

		left := e.SlotsLeft()
		if quantity > left {
			return apperrors.CapacityExceeded(left)
		}

		amount := e.Price * float64(quantity)
		productInfo := e.Name
		if productInfo == "" {
			productInfo = unnamedEvent
		}
		form := s.gateway.BuildPaymentRequest(payu.PaymentRequest{
			TxnID:       txnID,
			Amount:      amount,
			ProductInfo: productInfo,
			FirstName:   req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			ClientURL:   req.ClientURL,
			EventID:     e.ID.Hex(),
		})

		bookedAt := s.now()
		participant := model.Participant{
			ID:            participantID,
			Name:          req.Name,
			Phone:         req.Phone,
			SkillLevel:    req.SkillLevel,
			PaymentStatus: model.PaymentPending,
			OrderID:       txnID,
			BookingDate:   &bookedAt,
			Amount:        amount,
			Quantity:      quantity,
			ClientURL:     req.ClientURL,
		}
		if err := s.repo.AppendParticipant(sessCtx, e.ID, participant); err != nil {
			return s.mapRepoError(err, "reserve.append", eventID)
		}

		res = &Reservation{
			Message:       "Booking initiated",
			PaymentForm:   form,
			EventName:     e.Name,
			EventDate:     e.Date,
			Venue:         e.VenueName,
			CustomerName:  req.Name,
			CustomerPhone: req.Phone,
			SkillLevel:    req.SkillLevel,
			Quantity:      quantity,
			TotalAmount:   amount,
			ParticipantID: participantID.Hex(),
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Failed to reserve slots", "event_id", eventID, "txnid", txnID, "error", err)
			err = apperrors.Internal("Server error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking initiated",
		"event_id", eventID,
		"txnid", txnID,
		"quantity", quantity,
		"amount", res.TotalAmount,
	)
	s.publish(ctx, kafka.EventBookingInitiated, kafka.BookingEvent{
		EventID:       eventID,
		TxnID:         txnID,
		ParticipantID: participantID.Hex(),
		Phone:         req.Phone,
		Quantity:      quantity,
		Amount:        res.TotalAmount,
		Status:        string(model.PaymentPending),
	})
	return res, nil
}
