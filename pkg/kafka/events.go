package kafka

import "time"

// Booking lifecycle event types published on the bookings topic.
const (
	EventBookingInitiated = "booking.initiated"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingFailed    = "booking.failed"
	EventBookingAnomaly   = "booking.anomaly"
	EventThresholdReached = "event.threshold_reached"
	EventRefundRequested  = "booking.refund_requested"

	BookingSchemaVersion = "1"
	SourceBookingService = "playverse-api"
)

// BookingEvent is the payload of every booking lifecycle message.
type BookingEvent struct {
	EventID       string    `json:"eventId"`
	TxnID         string    `json:"txnid,omitempty"`
	ParticipantID string    `json:"participantId,omitempty"`
	PaymentID     string    `json:"paymentId,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	Status        string    `json:"status,omitempty"`
	Source        string    `json:"source,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Threshold     string    `json:"threshold,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewBookingMessage keys the message by event id so consumers see one event's history in order.
func NewBookingMessage(eventType string, payload BookingEvent, correlationID string) Message {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}
	return NewMessage().
		WithKey(payload.EventID).
		WithValue(payload).
		WithEventType(eventType).
		WithCorrelationID(correlationID).
		WithSchemaVersion(BookingSchemaVersion).
		WithSource(SourceBookingService).
		Build()
}
