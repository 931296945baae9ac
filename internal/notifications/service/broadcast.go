package service

import (
	"context"
	"errors"
	"net/http"

	eventserrors "playverse/internal/events/errors"
	eventsrepo "playverse/internal/events/repository"
	"playverse/pkg/config"
	apperrors "playverse/pkg/errors"
	"playverse/pkg/model"
	"playverse/pkg/msg91"
	"playverse/pkg/obs"
	"playverse/pkg/sanitizer"

	"go.opentelemetry.io/otel/attribute"
)

// Kind selects the template and the counter of a broadcast.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindCancellation Kind = "cancellation"
)

const fallbackName = "Player"

// EventStore is the part of the events repository a broadcast needs.
type EventStore interface {
	FindByID(ctx context.Context, id string) (*model.Event, error)
	IncrementCounter(ctx context.Context, id string, counter eventsrepo.Counter) (int, error)
}

type Messenger interface {
	Send(ctx context.Context, t msg91.Template) (map[string]any, error)
}

// Broadcast is the outcome of one bulk send.
type Broadcast struct {
	Kind       Kind
	Count      int
	Recipients int
	Response   map[string]any
}

type BroadcastService interface {
	SendConfirmation(ctx context.Context, eventID string) (*Broadcast, error)
	SendCancellation(ctx context.Context, eventID string) (*Broadcast, error)
}

type broadcastService struct {
	events    EventStore
	messenger Messenger
	templates msg91.Templates
	cfg       *config.Config
}

func NewBroadcastService(events EventStore, messenger Messenger, templates msg91.Templates, cfg *config.Config) BroadcastService {
	return &broadcastService{
		events:    events,
		messenger: messenger,
		templates: templates,
		cfg:       cfg,
	}
}

func (s *broadcastService) SendConfirmation(ctx context.Context, eventID string) (*Broadcast, error) {
	return s.send(ctx, eventID, KindConfirmation)
}

func (s *broadcastService) SendCancellation(ctx context.Context, eventID string) (*Broadcast, error) {
	return s.send(ctx, eventID, KindCancellation)
}

// recipients lists successful participants whose phone converts to a
// twelve digit WhatsApp number. Each number is messaged once.
func recipients(e *model.Event) []msg91.Contact {
	seen := map[string]bool{}
	var out []msg91.Contact
	for _, p := range e.SuccessfulParticipants() {
		phone, ok := sanitizer.WhatsAppRecipient(p.Phone)
		if !ok || seen[phone] {
			continue
		}
		seen[phone] = true
		name := p.Name
		if name == "" {
			name = fallbackName
		}
		out = append(out, msg91.Contact{Name: name, Phone: phone})
	}
	return out
}

func (s *broadcastService) send(ctx context.Context, eventID string, kind Kind) (out *Broadcast, err error) {
	ctx, span := obs.StartSpan(ctx, "notifications.broadcast",
		attribute.String("event.id", eventID),
		attribute.String("broadcast.kind", string(kind)),
	)
	defer func() { obs.End(span, err) }()

	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, s.mapRepoError(err, eventID)
	}

	to := recipients(e)
	if len(to) == 0 {
		return nil, apperrors.InvalidInput("No valid participants with successful payments found")
	}

	details := msg91.EventDetails{
		ID:         e.ID.Hex(),
		Name:       e.Name,
		VenueName:  e.VenueName,
		SportsName: e.SportsName,
		Location:   e.Location,
		Slot:       e.Slot,
		Date:       e.Date,
		VenueImage: e.VenueImage,
	}
	template := s.templates.Confirmation(details, to)
	counter := eventsrepo.ConfirmationCounter
	if kind == KindCancellation {
		template = s.templates.Cancellation(details, to)
		counter = eventsrepo.CancellationCounter
	}

	sendCtx := ctx
	if s.cfg.ExternalCallTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.cfg.ExternalCallTimeout)
		defer cancel()
	}
	resp, err := s.messenger.Send(sendCtx, template)
	if err != nil {
		s.cfg.Log.Error("Broadcast failed", "event_id", eventID, "kind", kind, "recipients", len(to), "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeExternalService, failureMessage(kind), http.StatusInternalServerError).
			WithDetails(map[string]any{"details": err.Error()})
	}

	count, err := s.events.IncrementCounter(ctx, eventID, counter)
	if err != nil {
		// The messages are out; only the counter is behind.
		s.cfg.Log.Error("Failed to update broadcast counter", "event_id", eventID, "kind", kind, "error", err)
		return nil, s.mapRepoError(err, eventID)
	}

	s.cfg.Log.Info("Broadcast sent", "event_id", eventID, "kind", kind, "recipients", len(to), "count", count)
	return &Broadcast{Kind: kind, Count: count, Recipients: len(to), Response: resp}, nil
}

func failureMessage(kind Kind) string {
	if kind == KindCancellation {
		return "Failed to send cancellation messages"
	}
	return "Failed to send confirmation messages"
}

func (s *broadcastService) mapRepoError(err error, eventID string) error {
	switch {
	case errors.Is(err, eventserrors.ErrNotFound):
		return apperrors.NotFound("Event")
	case errors.Is(err, eventserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid event ID format")
	}
	s.cfg.Log.Error("Event lookup for broadcast failed", "event_id", eventID, "error", err)
	return apperrors.Internal("Server error", err)
}
