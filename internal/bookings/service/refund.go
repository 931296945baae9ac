package service

import (
	"context"
	"net/http"

	apperrors "playverse/pkg/errors"
	"playverse/pkg/kafka"
	"playverse/pkg/model"
	"playverse/pkg/obs"
	"playverse/pkg/payu"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
)

type RefundOutcome struct {
	RefundResult any    `json:"refundResult"`
	RefundID     string `json:"refundId"`
	Accepted     bool   `json:"accepted"`
}

// Refund asks the gateway to return a confirmed participant's payment and
// records the attempt in the refund ledger. The participant keeps its
// success status; the ledger is the record of money sent back.
func (s *bookingService) Refund(ctx context.Context, eventID, participantID string) (out *RefundOutcome, err error) {
	ctx, span := obs.StartSpan(ctx, "booking.refund",
		attribute.String("event.id", eventID),
		attribute.String("participant.id", participantID),
	)
	defer func() { obs.End(span, err) }()

	if !primitive.IsValidObjectID(participantID) {
		return nil, apperrors.InvalidInput("Invalid participant ID format")
	}

	e, err := s.repo.FindEvent(ctx, eventID)
	if err != nil {
		return nil, s.mapRepoError(err, "refund.find", eventID)
	}
	i := e.FindParticipantByID(participantID)
	if i < 0 || e.Participants[i].PaymentStatus != model.PaymentSuccess {
		return nil, apperrors.NotFound("Participant")
	}
	p := e.Participants[i]
	if p.PaymentID == "" {
		return nil, apperrors.InvalidState("Participant has no captured payment to refund")
	}

	token := payu.NewRefundToken()
	callCtx := ctx
	if s.cfg.ExternalCallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.ExternalCallTimeout)
		defer cancel()
	}
	result, gatewayErr := s.gateway.Refund(callCtx, payu.RefundRequest{
		PaymentID: p.PaymentID,
		Amount:    p.Amount,
		Token:     token,
	})

	record := &model.Refund{
		EventID:       e.ID,
		ParticipantID: p.ID,
		PaymentID:     p.PaymentID,
		TokenID:       token,
		Amount:        p.Amount,
	}
	var raw any
	if result != nil {
		raw = result.Raw
		record.Accepted = gatewayErr == nil && result.Accepted()
		record.Response = rawToMap(result.Raw)
	}
	if gatewayErr != nil {
		record.Error = gatewayErr.Error()
	}
	if lerr := s.repo.InsertRefund(ctx, record); lerr != nil {
		s.cfg.Log.Error("Failed to record refund attempt",
			"event_id", eventID,
			"participant_id", participantID,
			"payment_id", p.PaymentID,
			"token", token,
			"error", lerr,
		)
	}

	if gatewayErr != nil {
		s.cfg.Log.Error("Refund failed", "event_id", eventID, "participant_id", participantID, "payment_id", p.PaymentID, "error", gatewayErr)
		return nil, apperrors.Wrap(gatewayErr, apperrors.CodeExternalService, "Refund failed", http.StatusInternalServerError).
			WithDetails(map[string]any{"details": gatewayErr.Error()})
	}

	s.cfg.Log.Info("Refund requested",
		"event_id", eventID,
		"participant_id", participantID,
		"payment_id", p.PaymentID,
		"amount", p.Amount,
		"accepted", record.Accepted,
	)
	s.publish(ctx, kafka.EventRefundRequested, kafka.BookingEvent{
		EventID:       eventID,
		TxnID:         p.OrderID,
		ParticipantID: participantID,
		PaymentID:     p.PaymentID,
		Phone:         p.Phone,
		Quantity:      p.Quantity,
		Amount:        p.Amount,
		Status:        string(p.PaymentStatus),
	})

	return &RefundOutcome{
		RefundResult: raw,
		RefundID:     record.ID.Hex(),
		Accepted:     record.Accepted,
	}, nil
}

func rawToMap(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	default:
		return map[string]any{"raw": v}
	}
}
