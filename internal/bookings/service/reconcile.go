package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingserrors "playverse/internal/bookings/errors"
	"playverse/internal/bookings/repository"
	apperrors "playverse/pkg/errors"
	"playverse/pkg/kafka"
	"playverse/pkg/model"
	"playverse/pkg/obs"
	"playverse/pkg/payu"

	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
)

// Source is the channel a payment notification arrived on.
type Source string

const (
	SourceWebhook         Source = "webhook"
	SourceRedirectSuccess Source = "redirect_success"
	SourceRedirectFailure Source = "redirect_failure"
)

type Notification struct {
	Source    Source
	TxnID     string
	Status    string
	PaymentID string
	// Amount is used only when HasAmount is set.
	Amount    float64
	HasAmount bool
	Reason    string
}

type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeFailed           Outcome = "failed"
	OutcomePending          Outcome = "pending"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	// OutcomeAnomaly is a payment the gateway took that could not become a booking.
	OutcomeAnomaly Outcome = "anomaly"
)

const (
	NoteInsufficientSlots = "Payment processed but booking failed due to insufficient slots"
	NotePaidAfterFailure  = "Payment received for a booking that had already failed"
)

type Result struct {
	Outcome Outcome
	// Status is the participant's payment status after the notification.
	Status    model.PaymentStatus
	EventID   string
	TxnID     string
	ClientURL string
	Note      string
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// target maps a notification onto the participant status it asks for.
func (n Notification) target() model.PaymentStatus {
	switch {
	case n.Source == SourceRedirectFailure:
		return model.PaymentFailed
	case payu.StatusSuccess == normalizeStatus(n.Status):
		return model.PaymentSuccess
	case payu.StatusPending == normalizeStatus(n.Status) && n.Source == SourceWebhook:
		return model.PaymentPending
	default:
		return model.PaymentFailed
	}
}

// HandleGatewayResponse verifies a PayU callback and reconciles it.
func (s *bookingService) HandleGatewayResponse(ctx context.Context, source Source, resp *payu.Response) (*Result, error) {
	if err := s.gateway.Verify(resp); err != nil {
		s.cfg.Log.Warn("Rejected gateway callback",
			"source", source,
			"txnid", resp.TxnID,
			"error", err,
		)
		return nil, apperrors.GatewaySignature("Invalid payment signature")
	}

	n := Notification{
		Source:    source,
		TxnID:     resp.TxnID,
		Status:    resp.Status,
		PaymentID: resp.MihPayID,
		Reason:    resp.ErrorMessage,
	}
	n.Amount, n.HasAmount = resp.ParsedAmount()
	return s.Reconcile(ctx, n)
}

// Reconcile applies a payment notification to its participant. Every source
// goes through here, in any order and any number of times; a participant
// moves out of pending at most once.
func (s *bookingService) Reconcile(ctx context.Context, n Notification) (res *Result, err error) {
	ctx, span := obs.StartSpan(ctx, "booking.reconcile",
		attribute.String("booking.txnid", n.TxnID),
		attribute.String("booking.source", string(n.Source)),
	)
	defer func() { obs.End(span, err) }()

	if n.TxnID == "" {
		return nil, apperrors.InvalidInput("Transaction ID is required")
	}

	var participant model.Participant
	var event *model.Event
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		e, err := s.repo.FindEventByOrderID(sessCtx, n.TxnID)
		if err != nil {
			return s.mapRepoError(err, "reconcile.find", n.TxnID)
		}
		i := e.FindParticipantByOrderID(n.TxnID)
		if i < 0 {
			return s.mapRepoError(fmt.Errorf("%w: %s", bookingserrors.ErrEventNotFound, n.TxnID), "reconcile.find", n.TxnID)
		}
		event = e
		participant = e.Participants[i]
		res, err = s.apply(sessCtx, e, participant, n)
		return err
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Failed to reconcile payment", "txnid", n.TxnID, "source", n.Source, "error", err)
			err = apperrors.Internal("Server error", err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("booking.outcome", string(res.Outcome)))
	s.afterCommit(ctx, event, participant, n, res)
	return res, nil
}

// apply runs inside the transaction. It must stay free of side effects
// outside the database since the body can be retried.
func (s *bookingService) apply(ctx context.Context, e *model.Event, p model.Participant, n Notification) (*Result, error) {
	res := &Result{EventID: e.ID.Hex(), TxnID: n.TxnID, ClientURL: p.ClientURL, Status: p.PaymentStatus}
	target := n.target()

	changed, err := model.Transition(p.PaymentStatus, target)
	if errors.Is(err, model.ErrIllegalTransition) {
		if p.PaymentStatus == model.PaymentFailed && target == model.PaymentSuccess {
			res.Outcome = OutcomeAnomaly
			res.Note = NotePaidAfterFailure
			return res, s.backfillPaymentID(ctx, e, p, n)
		}
		res.Outcome = OutcomeAlreadyProcessed
		return res, s.backfillPaymentID(ctx, e, p, n)
	}
	if err != nil {
		return nil, err
	}
	if !changed {
		res.Outcome = OutcomeAlreadyProcessed
		if p.PaymentStatus == model.PaymentPending {
			res.Outcome = OutcomePending
		}
		return res, s.backfillPaymentID(ctx, e, p, n)
	}

	switch target {
	case model.PaymentSuccess:
		if left := e.SlotsLeft(); p.Quantity > left {
			if err := s.repo.FailParticipant(ctx, e.ID, p.OrderID, n.PaymentID); err != nil {
				return nil, s.mapStale(err, n.TxnID)
			}
			res.Outcome = OutcomeAnomaly
			res.Status = model.PaymentFailed
			res.Note = NoteInsufficientSlots
			return res, nil
		}
		amount := p.Amount
		if n.HasAmount {
			amount = n.Amount
		}
		if err := s.repo.ConfirmParticipant(ctx, e.ID, p.OrderID, p.Quantity, repository.Confirmation{
			PaymentID:   n.PaymentID,
			Amount:      amount,
			BookingDate: s.now(),
		}); err != nil {
			return nil, s.mapStale(err, n.TxnID)
		}
		res.Outcome = OutcomeConfirmed
		res.Status = model.PaymentSuccess
	case model.PaymentFailed:
		if err := s.repo.FailParticipant(ctx, e.ID, p.OrderID, n.PaymentID); err != nil {
			return nil, s.mapStale(err, n.TxnID)
		}
		res.Outcome = OutcomeFailed
		res.Status = model.PaymentFailed
	}
	return res, nil
}

// backfillPaymentID stores a gateway reference the participant is missing.
// It never changes the status.
func (s *bookingService) backfillPaymentID(ctx context.Context, e *model.Event, p model.Participant, n Notification) error {
	if n.PaymentID == "" || p.PaymentID == n.PaymentID {
		return nil
	}
	if p.PaymentID != "" && p.PaymentStatus != model.PaymentPending {
		return nil
	}
	if err := s.repo.RecordPaymentID(ctx, e.ID, p.OrderID, p.PaymentStatus, n.PaymentID); err != nil {
		return s.mapStale(err, n.TxnID)
	}
	return nil
}

// mapStale reports a conditional write that matched nothing. Concurrent
// writers inside transactions surface as retried write conflicts instead.
func (s *bookingService) mapStale(err error, txnID string) error {
	if errors.Is(err, bookingserrors.ErrStaleParticipant) {
		s.cfg.Log.Warn("Participant changed during reconciliation", "txnid", txnID)
		return apperrors.Conflict("Payment is being processed, please retry")
	}
	return s.mapRepoError(err, "reconcile.update", txnID)
}

func (s *bookingService) afterCommit(ctx context.Context, e *model.Event, p model.Participant, n Notification, res *Result) {
	payload := kafka.BookingEvent{
		EventID:       res.EventID,
		TxnID:         n.TxnID,
		ParticipantID: p.ID.Hex(),
		PaymentID:     n.PaymentID,
		Phone:         p.Phone,
		Quantity:      p.Quantity,
		Amount:        p.Amount,
		Source:        string(n.Source),
		Reason:        n.Reason,
	}

	switch res.Outcome {
	case OutcomeConfirmed:
		s.cfg.Log.Info("Payment confirmed", "event_id", res.EventID, "txnid", n.TxnID, "source", n.Source, "quantity", p.Quantity)
		if n.HasAmount {
			payload.Amount = n.Amount
		}
		payload.Status = string(model.PaymentSuccess)
		s.publish(ctx, kafka.EventBookingConfirmed, payload)
		s.notifyThresholds(ctx, e.ID.Hex())
	case OutcomeFailed:
		s.cfg.Log.Info("Payment failed", "event_id", res.EventID, "txnid", n.TxnID, "source", n.Source, "reason", n.Reason)
		payload.Status = string(model.PaymentFailed)
		s.publish(ctx, kafka.EventBookingFailed, payload)
	case OutcomeAnomaly:
		s.cfg.Log.Error("Payment needs manual refund",
			"event_id", res.EventID,
			"txnid", n.TxnID,
			"payment_id", n.PaymentID,
			"source", n.Source,
			"note", res.Note,
		)
		payload.Status = string(model.PaymentFailed)
		payload.Reason = res.Note
		s.publish(ctx, kafka.EventBookingAnomaly, payload)
	default:
		s.cfg.Log.Debug("Payment notification changed nothing", "txnid", n.TxnID, "source", n.Source, "outcome", res.Outcome)
	}
}
