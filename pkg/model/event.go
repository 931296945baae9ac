package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID                  primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description         string             `json:"description" bson:"description" validate:"required"`
	Date                time.Time          `json:"date" bson:"date" validate:"required"`
	Slot                string             `json:"slot" bson:"slot" validate:"required"`
	Price               float64            `json:"price" bson:"price" validate:"gte=0"`
	ActualPrice         float64            `json:"actualPrice,omitempty" bson:"actualPrice,omitempty" validate:"omitempty,gte=0"`
	SportsName          string             `json:"sportsName" bson:"sportsName" validate:"required"`
	VenueName           string             `json:"venueName" bson:"venueName" validate:"required"`
	Location            string             `json:"location" bson:"location" validate:"required"`
	VenueImage          string             `json:"venueImage,omitempty" bson:"venueImage,omitempty" validate:"omitempty,url"`
	ParticipantsLimit   int                `json:"participantsLimit" bson:"participantsLimit" validate:"required,min=1"`
	CurrentParticipants int                `json:"currentParticipants" bson:"currentParticipants"`
	Participants        []Participant      `json:"participants" bson:"participants"`
	Notified75          bool               `json:"notified75" bson:"notified75"`
	Notified100         bool               `json:"notified100" bson:"notified100"`
	ConfirmationCount   int                `json:"confirmationCount" bson:"confirmationCount"`
	CancellationCount   int                `json:"cancellationCount" bson:"cancellationCount"`
	Slug                string             `json:"slug,omitempty" bson:"slug,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EventUpdate carries the mutable catalogue fields. Participants and the
// notification flags are owned by the booking workflow and cannot be patched.
type EventUpdate struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description       *string    `json:"description,omitempty"`
	Date              *time.Time `json:"date,omitempty"`
	Slot              *string    `json:"slot,omitempty" validate:"omitempty,min=1"`
	Price             *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	ActualPrice       *float64   `json:"actualPrice,omitempty" validate:"omitempty,gte=0"`
	SportsName        *string    `json:"sportsName,omitempty" validate:"omitempty,min=1"`
	VenueName         *string    `json:"venueName,omitempty" validate:"omitempty,min=1"`
	Location          *string    `json:"location,omitempty" validate:"omitempty,min=1"`
	VenueImage        *string    `json:"venueImage,omitempty" validate:"omitempty,url"`
	ParticipantsLimit *int       `json:"participantsLimit,omitempty" validate:"omitempty,min=1"`
}

// EventView is an event enriched with its capacity figures for API responses.
type EventView struct {
	*Event
	SlotsLeft        int     `json:"slotsLeft"`
	TotalBookedSlots int     `json:"totalBookedSlots"`
	FilledPercent    float64 `json:"filledPercent"` // ratio in [0, 1]
	MapURL           *string `json:"mapUrl,omitempty"`
}

func NewEventView(e *Event) *EventView {
	return &EventView{
		Event:            e,
		SlotsLeft:        e.SlotsLeft(),
		TotalBookedSlots: e.BookedSlots(),
		FilledPercent:    e.FilledRatio(),
	}
}

// FindParticipantByOrderID returns the participant index for a transaction id, or -1.
func (e *Event) FindParticipantByOrderID(orderID string) int {
	for i := range e.Participants {
		if e.Participants[i].OrderID == orderID {
			return i
		}
	}
	return -1
}

func (e *Event) FindParticipantByID(id string) int {
	for i := range e.Participants {
		if e.Participants[i].ID.Hex() == id {
			return i
		}
	}
	return -1
}
