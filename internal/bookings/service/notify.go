package service

import (
	"context"

	"playverse/pkg/kafka"
	"playverse/pkg/model"
	"playverse/pkg/msg91"
	"playverse/pkg/obs"

	"go.opentelemetry.io/otel/attribute"
)

// notifyThresholds alerts the admin once per occupancy milestone. The flag
// on the event is claimed before sending so concurrent confirmations cannot
// both send; a failed send gives the claim back for the next confirmation.
func (s *bookingService) notifyThresholds(ctx context.Context, eventID string) {
	ctx, span := obs.StartSpan(ctx, "booking.notify_thresholds", attribute.String("event.id", eventID))
	var spanErr error
	defer func() { obs.End(span, spanErr) }()

	if s.alerts.Messenger == nil || s.alerts.AdminPhone == "" {
		s.cfg.Log.Debug("Threshold alerts disabled", "event_id", eventID)
		return
	}

	e, err := s.repo.FindEvent(ctx, eventID)
	if err != nil {
		spanErr = err
		s.cfg.Log.Error("Failed to load event for threshold check", "event_id", eventID, "error", err)
		return
	}

	for _, t := range e.DueThresholds() {
		claimed, err := s.repo.ClaimThreshold(ctx, e.ID, t)
		if err != nil {
			spanErr = err
			s.cfg.Log.Error("Failed to claim threshold notification", "event_id", eventID, "threshold", t.Label(), "error", err)
			continue
		}
		if !claimed {
			continue
		}

		if err := s.sendThreshold(ctx, e, t); err != nil {
			spanErr = err
			s.cfg.Log.Error("Failed to send threshold notification", "event_id", eventID, "threshold", t.Label(), "error", err)
			if rerr := s.repo.ReleaseThreshold(ctx, e.ID, t); rerr != nil {
				s.cfg.Log.Error("Failed to release threshold claim", "event_id", eventID, "threshold", t.Label(), "error", rerr)
			}
			continue
		}

		s.cfg.Log.Info("Threshold notification sent", "event_id", eventID, "threshold", t.Label(), "booked", e.BookedSlots(), "limit", e.ParticipantsLimit)
		s.publish(ctx, kafka.EventThresholdReached, kafka.BookingEvent{
			EventID:   eventID,
			Quantity:  e.BookedSlots(),
			Threshold: t.Label(),
		})
	}
}

func (s *bookingService) sendThreshold(ctx context.Context, e *model.Event, t model.Threshold) error {
	successful := e.SuccessfulParticipants()
	booked := make([]msg91.Contact, 0, len(successful))
	for _, p := range successful {
		booked = append(booked, msg91.Contact{Name: p.Name, Phone: p.Phone})
	}

	msg := s.alerts.Templates.Threshold(
		s.alerts.AdminPhone,
		t.Label(),
		msg91.EventURL(s.alerts.EventBaseURL, e.ID.Hex()),
		eventDetails(e),
		booked,
	)

	if s.cfg.ExternalCallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ExternalCallTimeout)
		defer cancel()
	}
	_, err := s.alerts.Messenger.Send(ctx, msg)
	return err
}
